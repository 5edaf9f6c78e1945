package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published by this service.
const (
	BookingCreated = "booking.created"
	BookingPaid    = "booking.paid"
)

// Event types consumed from the payment provider webhook relay.
const (
	PaymentCompleted = "payment.completed"
)

// BookingCreatedEvent announces a newly persisted (unpaid) booking.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	BookingDate   string    `json:"booking_date"`
	Location      string    `json:"location"`
	NumberOfTents int       `json:"number_of_tents"`
	Total         float64   `json:"total"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingPaidEvent announces a confirmed payment.
type BookingPaidEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	Total         float64   `json:"total"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentCompletedEvent arrives when the payment provider reports a
// finished checkout session.
type PaymentCompletedEvent struct {
	SessionID  string    `json:"session_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
