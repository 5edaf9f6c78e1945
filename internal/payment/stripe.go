package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/nomadic-camps/booking-service/internal/domain"
	"github.com/nomadic-camps/booking-service/internal/domain/booking"
)

// StripeProvider implements Provider using Stripe Checkout.
type StripeProvider struct {
	currency      string
	publicBaseURL string
}

// NewStripeProvider configures the Stripe client and returns a provider.
// currency is a lowercase ISO code ("aed"); publicBaseURL is the
// booking site origin the customer returns to.
func NewStripeProvider(secretKey, currency, publicBaseURL string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{
		currency:      currency,
		publicBaseURL: publicBaseURL,
	}
}

// CreateSession opens a Checkout Session for the booking's frozen total.
// The charge amount is the total converted to fils, rounded here and
// only here; the stored booking keeps the unrounded value.
func (p *StripeProvider) CreateSession(ctx context.Context, b *booking.Booking) (Session, error) {
	amount := int64(math.Round(b.Total() * 100))

	description := fmt.Sprintf("%s camping on %s, %d tent(s)",
		b.Location(), b.BookingDate().Format("Jan 2, 2006"), b.NumberOfTents())

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(b.ID().String()),
		CustomerEmail:     stripe.String(b.CustomerEmail()),
		SuccessURL:        stripe.String(p.publicBaseURL + "/booking/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(p.publicBaseURL + "/booking/failed"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("NOMADIC Desert Camping - " + b.BookingNumber()),
						Description: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return Session{}, domain.NewPaymentError("failed to create checkout session", err)
	}

	return Session{ID: s.ID, URL: s.URL}, nil
}

// VerifySession reports whether the Checkout Session has been paid.
func (p *StripeProvider) VerifySession(ctx context.Context, sessionID string) (bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return false, domain.NewPaymentError("failed to retrieve checkout session", err)
	}

	return s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
