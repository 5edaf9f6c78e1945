// Package payment wraps the checkout-session provider the booking flow
// hands off to. The provider is an external collaborator; the service
// only creates sessions and verifies the return leg.
package payment

import (
	"context"

	"github.com/nomadic-camps/booking-service/internal/domain/booking"
)

// Session is a created checkout session the client is redirected to.
type Session struct {
	ID  string
	URL string
}

// Provider creates and verifies checkout sessions for bookings.
type Provider interface {
	// CreateSession opens a checkout session for the booking's frozen
	// total and returns the redirect URL.
	CreateSession(ctx context.Context, b *booking.Booking) (Session, error)

	// VerifySession reports whether the session has been paid.
	VerifySession(ctx context.Context, sessionID string) (bool, error)
}
