package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/nomadic-camps/booking-service/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a camping reservation. Its
// financial fields are frozen at creation time from the settings
// snapshot then in effect; later settings edits never change them.
type Booking struct {
	id            uuid.UUID
	bookingNumber string

	customerName  string
	customerEmail string
	customerPhone string

	bookingDate          time.Time
	location             Location
	numberOfTents        int
	addOns               AddOns
	hasChildren          bool
	selectedCustomAddOns []string
	notes                string

	subtotal float64
	vat      float64
	total    float64

	isPaid           bool
	paymentSessionID string
	paidAt           *time.Time

	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a reference in the format "NMD-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "NMD-" + string(result), nil
}

// NewBooking creates an unpaid Booking from a validated submission and
// its authoritative price breakdown. The submission is expected to have
// passed ValidateSubmission; only structural invariants are re-checked.
func NewBooking(sub Submission, breakdown Breakdown) (*Booking, error) {
	if sub.CustomerName == "" {
		return nil, domain.NewValidationError("customerName", "Name is required")
	}
	if sub.BookingDate.IsZero() {
		return nil, domain.NewValidationError("bookingDate", "Booking date is required")
	}
	if !sub.Location.IsBookable() {
		return nil, domain.NewValidationError("location", fmt.Sprintf("location %q is not bookable", sub.Location))
	}
	if sub.NumberOfTents < MinTents || sub.NumberOfTents > MaxTents {
		return nil, domain.NewValidationError("numberOfTents",
			fmt.Sprintf("Number of tents must be between %d and %d", MinTents, MaxTents))
	}
	if breakdown.Total < 0 {
		return nil, domain.NewValidationError("total", "booking total must not be negative")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	selected := make([]string, len(sub.SelectedCustomAddOns))
	copy(selected, sub.SelectedCustomAddOns)

	now := time.Now().UTC()
	return &Booking{
		id:                   uuid.New(),
		bookingNumber:        bookingNumber,
		customerName:         sub.CustomerName,
		customerEmail:        sub.CustomerEmail,
		customerPhone:        sub.CustomerPhone,
		bookingDate:          DateOnly(sub.BookingDate),
		location:             sub.Location,
		numberOfTents:        sub.NumberOfTents,
		addOns:               sub.AddOns,
		hasChildren:          sub.HasChildren,
		selectedCustomAddOns: selected,
		notes:                sub.Notes,
		subtotal:             breakdown.Subtotal,
		vat:                  breakdown.VAT,
		total:                breakdown.Total,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	customerName string,
	customerEmail string,
	customerPhone string,
	bookingDate time.Time,
	location Location,
	numberOfTents int,
	addOns AddOns,
	hasChildren bool,
	selectedCustomAddOns []string,
	notes string,
	subtotal float64,
	vat float64,
	total float64,
	isPaid bool,
	paymentSessionID string,
	paidAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                   id,
		bookingNumber:        bookingNumber,
		customerName:         customerName,
		customerEmail:        customerEmail,
		customerPhone:        customerPhone,
		bookingDate:          bookingDate,
		location:             location,
		numberOfTents:        numberOfTents,
		addOns:               addOns,
		hasChildren:          hasChildren,
		selectedCustomAddOns: selectedCustomAddOns,
		notes:                notes,
		subtotal:             subtotal,
		vat:                  vat,
		total:                total,
		isPaid:               isPaid,
		paymentSessionID:     paymentSessionID,
		paidAt:               paidAt,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking reference.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// CustomerName returns the customer's name.
func (b *Booking) CustomerName() string { return b.customerName }

// CustomerEmail returns the customer's email address.
func (b *Booking) CustomerEmail() string { return b.customerEmail }

// CustomerPhone returns the customer's phone number.
func (b *Booking) CustomerPhone() string { return b.customerPhone }

// BookingDate returns the calendar date of the stay (UTC midnight).
func (b *Booking) BookingDate() time.Time { return b.bookingDate }

// Location returns the booked location.
func (b *Booking) Location() Location { return b.location }

// NumberOfTents returns the number of tents booked.
func (b *Booking) NumberOfTents() int { return b.numberOfTents }

// AddOns returns the standard add-on selection flags.
func (b *Booking) AddOns() AddOns { return b.addOns }

// HasChildren reports whether children are in the party.
func (b *Booking) HasChildren() bool { return b.hasChildren }

// SelectedCustomAddOns returns the selected custom add-on identifiers.
func (b *Booking) SelectedCustomAddOns() []string { return b.selectedCustomAddOns }

// Notes returns the customer's free-text notes.
func (b *Booking) Notes() string { return b.notes }

// Subtotal returns the pre-VAT amount frozen at creation time.
func (b *Booking) Subtotal() float64 { return b.subtotal }

// VAT returns the VAT amount frozen at creation time.
func (b *Booking) VAT() float64 { return b.vat }

// Total returns the total amount frozen at creation time.
func (b *Booking) Total() float64 { return b.total }

// IsPaid reports whether payment has been confirmed.
func (b *Booking) IsPaid() bool { return b.isPaid }

// PaymentSessionID returns the checkout session linked to this booking,
// or the empty string before the payment handoff.
func (b *Booking) PaymentSessionID() string { return b.paymentSessionID }

// PaidAt returns the payment confirmation time, or nil if unpaid.
func (b *Booking) PaidAt() *time.Time { return b.paidAt }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// AttachPaymentSession records the checkout session created for this booking.
func (b *Booking) AttachPaymentSession(sessionID string) {
	b.paymentSessionID = sessionID
	b.updatedAt = time.Now().UTC()
}

// MarkPaid records a confirmed payment. Paying an already-paid booking
// is an invalid transition; callers handling provider retries should
// treat it as already processed.
func (b *Booking) MarkPaid() error {
	if b.isPaid {
		return domain.NewInvalidStateError("paid", "paid")
	}
	now := time.Now().UTC()
	b.isPaid = true
	b.paidAt = &now
	b.updatedAt = now
	return nil
}
