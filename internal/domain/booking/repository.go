package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter selects and pages bookings for the admin order list.
type ListFilter struct {
	// Search matches case-insensitively against customer name, email
	// and phone. Empty means no text filter.
	Search string

	// Location restricts to a single location; empty means all.
	Location Location

	// IsPaid restricts by payment status; nil means both.
	IsPaid *bool

	Page  int
	Limit int
}

// StatRow is the per-booking slice of data the dashboard and chart
// aggregations fold over.
type StatRow struct {
	BookingDate time.Time
	Location    Location
	Total       float64
	IsPaid      bool
	CreatedAt   time.Time
}

// Repository defines the persistence contract for bookings.
type Repository interface {
	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking.
	Update(ctx context.Context, b *Booking) error

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByPaymentSession retrieves the booking linked to a checkout session.
	FindByPaymentSession(ctx context.Context, sessionID string) (*Booking, error)

	// List retrieves bookings matching the filter, newest first, with
	// the total match count.
	List(ctx context.Context, filter ListFilter) ([]*Booking, int64, error)

	// StatRows retrieves the aggregation inputs for dashboard stats and
	// charts.
	StatRows(ctx context.Context) ([]StatRow, error)
}

// LockRepository defines the persistence contract for date/location locks.
type LockRepository interface {
	// Acquire atomically records loc for the given date if the date is
	// still unlocked, and returns the lock that holds after the call
	// along with whether this call created it. When the date was
	// already locked the existing lock is returned unchanged, whichever
	// location it names; the caller decides whether that is a conflict.
	Acquire(ctx context.Context, date time.Time, loc Location) (DateLocationLock, bool, error)

	// Release removes the lock for the date, but only if it still names
	// loc. Callers use it to undo an Acquire whose booking never
	// persisted; the location match keeps it from deleting a lock some
	// other submission won.
	Release(ctx context.Context, date time.Time, loc Location) error

	// Get retrieves the lock for a date, or nil when the date is open.
	Get(ctx context.Context, date time.Time) (*DateLocationLock, error)
}
