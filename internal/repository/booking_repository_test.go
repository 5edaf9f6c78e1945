package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nomadic-camps/booking-service/internal/domain"
	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&BookingModel{},
		&SettingsModel{},
		&DateLocationLockModel{},
	))
	return db
}

func newTestBooking(t *testing.T, mutate func(*bookingDomain.Submission)) *bookingDomain.Booking {
	t.Helper()

	sub := bookingDomain.Submission{
		CustomerName:  "Aisha Rahman",
		CustomerEmail: "aisha@example.com",
		CustomerPhone: "+971501234567",
		BookingDate:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		Location:      bookingDomain.LocationDesert,
		NumberOfTents: 2,
		AddOns:        bookingDomain.AddOns{Charcoal: true},
	}
	if mutate != nil {
		mutate(&sub)
	}

	b, err := bookingDomain.NewBooking(sub, bookingDomain.Breakdown{
		TentPrice: 2594,
		Subtotal:  2654,
		VAT:       132.70,
		Total:     2786.70,
	})
	require.NoError(t, err)
	return b
}

func TestBookingRepository_SaveAndFind(t *testing.T) {
	repo := NewGormBookingRepository(openTestDB(t))
	ctx := context.Background()

	b := newTestBooking(t, func(sub *bookingDomain.Submission) {
		sub.SelectedCustomAddOns = []string{"bbq-set"}
		sub.Notes = "Late arrival"
	})
	require.NoError(t, repo.Save(ctx, b))

	got, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)

	assert.Equal(t, b.ID(), got.ID())
	assert.Equal(t, b.BookingNumber(), got.BookingNumber())
	assert.Equal(t, "Aisha Rahman", got.CustomerName())
	assert.Equal(t, bookingDomain.LocationDesert, got.Location())
	assert.Equal(t, bookingDomain.AddOns{Charcoal: true}, got.AddOns())
	assert.Equal(t, []string{"bbq-set"}, got.SelectedCustomAddOns())
	assert.Equal(t, "Late arrival", got.Notes())
	assert.InDelta(t, 2786.70, got.Total(), 1e-9)
	assert.False(t, got.IsPaid())
}

func TestBookingRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormBookingRepository(openTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingRepository_Update_PaymentLifecycle(t *testing.T) {
	repo := NewGormBookingRepository(openTestDB(t))
	ctx := context.Background()

	b := newTestBooking(t, nil)
	require.NoError(t, repo.Save(ctx, b))

	b.AttachPaymentSession("cs_test_abc")
	require.NoError(t, repo.Update(ctx, b))

	got, err := repo.FindByPaymentSession(ctx, "cs_test_abc")
	require.NoError(t, err)
	assert.Equal(t, b.ID(), got.ID())

	require.NoError(t, got.MarkPaid())
	require.NoError(t, repo.Update(ctx, got))

	paid, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
	assert.NotNil(t, paid.PaidAt())
}

func TestBookingRepository_Update_NotFound(t *testing.T) {
	repo := NewGormBookingRepository(openTestDB(t))

	b := newTestBooking(t, nil)
	err := repo.Update(context.Background(), b)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingRepository_FindByPaymentSession_NotFound(t *testing.T) {
	repo := NewGormBookingRepository(openTestDB(t))

	_, err := repo.FindByPaymentSession(context.Background(), "cs_missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingRepository_List(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormBookingRepository(db)
	ctx := context.Background()

	names := []string{"Aisha Rahman", "Omar Haddad", "Fatima Omar"}
	locations := []bookingDomain.Location{
		bookingDomain.LocationDesert,
		bookingDomain.LocationMountain,
		bookingDomain.LocationWadi,
	}
	var saved []*bookingDomain.Booking
	for i := range names {
		idx := i
		b := newTestBooking(t, func(sub *bookingDomain.Submission) {
			sub.CustomerName = names[idx]
			sub.CustomerEmail = names[idx] + "@example.com"
			sub.Location = locations[idx]
			sub.BookingDate = time.Date(2025, 7, 10+idx, 0, 0, 0, 0, time.UTC)
		})
		require.NoError(t, repo.Save(ctx, b))
		saved = append(saved, b)
	}

	// Mark one paid.
	require.NoError(t, saved[0].MarkPaid())
	require.NoError(t, repo.Update(ctx, saved[0]))

	t.Run("no filter", func(t *testing.T) {
		got, total, err := repo.List(ctx, bookingDomain.ListFilter{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, got, 3)
	})

	t.Run("search matches name and email", func(t *testing.T) {
		got, total, err := repo.List(ctx, bookingDomain.ListFilter{Search: "Omar", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, got, 2)
	})

	t.Run("search ignores case", func(t *testing.T) {
		for _, term := range []string{"omar", "OMAR", "oMaR"} {
			got, total, err := repo.List(ctx, bookingDomain.ListFilter{Search: term, Page: 1, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(2), total, "search %q", term)
			assert.Len(t, got, 2, "search %q", term)
		}
	})

	t.Run("location filter", func(t *testing.T) {
		got, total, err := repo.List(ctx, bookingDomain.ListFilter{
			Location: bookingDomain.LocationWadi, Page: 1, Limit: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, "Fatima Omar", got[0].CustomerName())
	})

	t.Run("paid filter", func(t *testing.T) {
		paid := true
		got, total, err := repo.List(ctx, bookingDomain.ListFilter{IsPaid: &paid, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, "Aisha Rahman", got[0].CustomerName())
	})

	t.Run("pagination", func(t *testing.T) {
		got, total, err := repo.List(ctx, bookingDomain.ListFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, got, 1)
	})
}

func TestBookingRepository_StatRows(t *testing.T) {
	repo := NewGormBookingRepository(openTestDB(t))
	ctx := context.Background()

	b1 := newTestBooking(t, nil)
	require.NoError(t, repo.Save(ctx, b1))
	require.NoError(t, b1.MarkPaid())
	require.NoError(t, repo.Update(ctx, b1))

	b2 := newTestBooking(t, func(sub *bookingDomain.Submission) {
		sub.Location = bookingDomain.LocationMountain
	})
	require.NoError(t, repo.Save(ctx, b2))

	rows, err := repo.StatRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	paidCount := 0
	for _, row := range rows {
		assert.InDelta(t, 2786.70, row.Total, 1e-9)
		if row.IsPaid {
			paidCount++
		}
	}
	assert.Equal(t, 1, paidCount)
}
