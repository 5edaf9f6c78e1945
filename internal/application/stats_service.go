package application

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
)

// DashboardStats summarizes the booking book for the admin dashboard.
// Revenue counts paid bookings only.
type DashboardStats struct {
	TotalBookings       int     `json:"totalBookings"`
	PaidBookings        int     `json:"paidBookings"`
	PendingBookings     int     `json:"pendingBookings"`
	TotalRevenue        float64 `json:"totalRevenue"`
	AverageBookingValue float64 `json:"averageBookingValue"`
	ConversionRate      float64 `json:"conversionRate"`
	RecentBookings      int     `json:"recentBookings"`
}

// MonthlyPoint is one month on the bookings/revenue time series.
type MonthlyPoint struct {
	Month    string  `json:"month"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// LocationPoint is one location's slice of the bookings/revenue split.
type LocationPoint struct {
	Location string  `json:"location"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// ChartData carries the admin chart series plus the headline numbers.
type ChartData struct {
	MonthlyBookings []MonthlyPoint  `json:"monthlyBookings"`
	LocationStats   []LocationPoint `json:"locationStats"`
	Stats           ChartTotals     `json:"stats"`
}

// ChartTotals are the headline numbers rendered above the charts.
type ChartTotals struct {
	TotalBookings   int     `json:"totalBookings"`
	PaidBookings    int     `json:"paidBookings"`
	PendingBookings int     `json:"pendingBookings"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// StatsService folds booking rows into dashboard and chart aggregates.
// The fold happens in memory; the booking book for a single operator is
// small enough that pushing the grouping into SQL buys nothing.
type StatsService struct {
	repo   bookingDomain.Repository
	logger *zap.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo bookingDomain.Repository, logger *zap.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

// Dashboard computes the admin dashboard summary.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	rows, err := s.repo.StatRows(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalBookings: len(rows)}
	recentCutoff := time.Now().AddDate(0, 0, -30)

	for _, row := range rows {
		if row.IsPaid {
			stats.PaidBookings++
			stats.TotalRevenue += row.Total
		}
		if row.CreatedAt.After(recentCutoff) {
			stats.RecentBookings++
		}
	}
	stats.PendingBookings = stats.TotalBookings - stats.PaidBookings

	if stats.PaidBookings > 0 {
		stats.AverageBookingValue = round2(stats.TotalRevenue / float64(stats.PaidBookings))
	}
	if stats.TotalBookings > 0 {
		stats.ConversionRate = round2(float64(stats.PaidBookings) / float64(stats.TotalBookings) * 100)
	}
	stats.TotalRevenue = round2(stats.TotalRevenue)

	return stats, nil
}

// Charts computes the monthly and per-location series.
func (s *StatsService) Charts(ctx context.Context) (*ChartData, error) {
	rows, err := s.repo.StatRows(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		bookings int
		revenue  float64
	}
	months := map[string]*bucket{}
	monthKeys := []string{}
	locations := map[bookingDomain.Location]*bucket{}
	locationKeys := []bookingDomain.Location{}

	data := &ChartData{
		MonthlyBookings: []MonthlyPoint{},
		LocationStats:   []LocationPoint{},
	}

	for _, row := range rows {
		data.Stats.TotalBookings++
		if row.IsPaid {
			data.Stats.PaidBookings++
			data.Stats.TotalRevenue += row.Total
		}

		monthKey := row.BookingDate.Format("2006-01")
		mb, ok := months[monthKey]
		if !ok {
			mb = &bucket{}
			months[monthKey] = mb
			monthKeys = append(monthKeys, monthKey)
		}
		mb.bookings++
		if row.IsPaid {
			mb.revenue += row.Total
		}

		lb, ok := locations[row.Location]
		if !ok {
			lb = &bucket{}
			locations[row.Location] = lb
			locationKeys = append(locationKeys, row.Location)
		}
		lb.bookings++
		if row.IsPaid {
			lb.revenue += row.Total
		}
	}

	data.Stats.PendingBookings = data.Stats.TotalBookings - data.Stats.PaidBookings
	data.Stats.TotalRevenue = round2(data.Stats.TotalRevenue)

	sort.Strings(monthKeys)
	for _, key := range monthKeys {
		month, _ := time.Parse("2006-01", key)
		data.MonthlyBookings = append(data.MonthlyBookings, MonthlyPoint{
			Month:    month.Format("Jan 2006"),
			Bookings: months[key].bookings,
			Revenue:  round2(months[key].revenue),
		})
	}

	sort.Slice(locationKeys, func(i, j int) bool { return locationKeys[i] < locationKeys[j] })
	for _, key := range locationKeys {
		data.LocationStats = append(data.LocationStats, LocationPoint{
			Location: string(key),
			Bookings: locations[key].bookings,
			Revenue:  round2(locations[key].revenue),
		})
	}

	return data, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
