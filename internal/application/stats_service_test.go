package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
)

func statRow(date string, loc bookingDomain.Location, total float64, paid bool, createdDaysAgo int) bookingDomain.StatRow {
	d, _ := time.Parse(time.DateOnly, date)
	return bookingDomain.StatRow{
		BookingDate: d,
		Location:    loc,
		Total:       total,
		IsPaid:      paid,
		CreatedAt:   time.Now().AddDate(0, 0, -createdDaysAgo),
	}
}

func TestDashboard(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.statRows = []bookingDomain.StatRow{
		statRow("2025-06-05", bookingDomain.LocationDesert, 1571.85, true, 5),
		statRow("2025-06-12", bookingDomain.LocationWadi, 4489.80, true, 10),
		statRow("2025-07-01", bookingDomain.LocationMountain, 2786.70, false, 45),
		statRow("2025-07-08", bookingDomain.LocationDesert, 1571.85, false, 2),
	}
	service := NewStatsService(repo, zap.NewNop())

	stats, err := service.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalBookings)
	assert.Equal(t, 2, stats.PaidBookings)
	assert.Equal(t, 2, stats.PendingBookings)
	assert.InDelta(t, 6061.65, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 3030.83, stats.AverageBookingValue, 0.01)
	assert.InDelta(t, 50, stats.ConversionRate, 1e-9)
	assert.Equal(t, 3, stats.RecentBookings)
}

func TestDashboard_Empty(t *testing.T) {
	repo := newFakeBookingRepo()
	service := NewStatsService(repo, zap.NewNop())

	stats, err := service.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalBookings)
	assert.InDelta(t, 0, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 0, stats.AverageBookingValue, 1e-9)
	assert.InDelta(t, 0, stats.ConversionRate, 1e-9)
}

func TestCharts(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.statRows = []bookingDomain.StatRow{
		statRow("2025-06-05", bookingDomain.LocationDesert, 1571.85, true, 5),
		statRow("2025-06-12", bookingDomain.LocationWadi, 4489.80, true, 10),
		statRow("2025-07-01", bookingDomain.LocationMountain, 2786.70, false, 45),
		statRow("2025-07-08", bookingDomain.LocationDesert, 1571.85, true, 2),
	}
	service := NewStatsService(repo, zap.NewNop())

	charts, err := service.Charts(context.Background())
	require.NoError(t, err)

	// Months come back chronologically.
	require.Len(t, charts.MonthlyBookings, 2)
	assert.Equal(t, "Jun 2025", charts.MonthlyBookings[0].Month)
	assert.Equal(t, 2, charts.MonthlyBookings[0].Bookings)
	assert.InDelta(t, 6061.65, charts.MonthlyBookings[0].Revenue, 1e-9)
	assert.Equal(t, "Jul 2025", charts.MonthlyBookings[1].Month)
	assert.Equal(t, 2, charts.MonthlyBookings[1].Bookings)
	// Unpaid bookings count toward volume but not revenue.
	assert.InDelta(t, 1571.85, charts.MonthlyBookings[1].Revenue, 1e-9)

	require.Len(t, charts.LocationStats, 3)
	byLocation := map[string]LocationPoint{}
	for _, p := range charts.LocationStats {
		byLocation[p.Location] = p
	}
	assert.Equal(t, 2, byLocation["Desert"].Bookings)
	assert.InDelta(t, 3143.70, byLocation["Desert"].Revenue, 1e-9)
	assert.Equal(t, 1, byLocation["Mountain"].Bookings)
	assert.InDelta(t, 0, byLocation["Mountain"].Revenue, 1e-9)

	assert.Equal(t, 4, charts.Stats.TotalBookings)
	assert.Equal(t, 3, charts.Stats.PaidBookings)
	assert.Equal(t, 1, charts.Stats.PendingBookings)
	assert.InDelta(t, 7633.50, charts.Stats.TotalRevenue, 1e-9)
}

func TestCharts_Empty(t *testing.T) {
	repo := newFakeBookingRepo()
	service := NewStatsService(repo, zap.NewNop())

	charts, err := service.Charts(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, charts.MonthlyBookings)
	assert.Empty(t, charts.MonthlyBookings)
	assert.NotNil(t, charts.LocationStats)
	assert.Equal(t, 0, charts.Stats.TotalBookings)
}
