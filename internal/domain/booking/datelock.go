package booking

import "time"

// DateLocationLock binds a calendar date to the single location
// permitted for bookings on that date. The lock is keyed by date only;
// there is no time-of-day or range logic.
type DateLocationLock struct {
	Date      string
	Location  Location
	CreatedAt time.Time
	UpdatedAt time.Time
}
