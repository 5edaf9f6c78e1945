// Package notify dispatches booking emails. Delivery failures are the
// caller's to log; they never roll back a paid booking.
package notify

import (
	"context"

	"github.com/nomadic-camps/booking-service/internal/domain/booking"
)

// Notifier sends booking emails.
type Notifier interface {
	// SendBookingConfirmation emails the customer after payment clears.
	SendBookingConfirmation(ctx context.Context, b *booking.Booking) error

	// SendAdminAlert notifies staff of a new paid booking.
	SendAdminAlert(ctx context.Context, b *booking.Booking) error
}
