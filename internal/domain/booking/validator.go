package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nomadic-camps/booking-service/internal/domain"
)

const (
	// MinTents and MaxTents bound the tent count on a single booking.
	MinTents = 1
	MaxTents = 5

	// MinWadiTents is the tent minimum for the Wadi location.
	MinWadiTents = 2

	// MinLeadTimeDays is the minimum number of days between submission
	// and the booking date.
	MinLeadTimeDays = 2

	// PhonePrefix is the required UAE dialing prefix.
	PhonePrefix = "+971"

	// minPhoneLength covers the prefix plus a 9-digit subscriber number.
	minPhoneLength = 12
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is a booking request as received from the form, before
// validation and pricing.
type Submission struct {
	CustomerName         string
	CustomerEmail        string
	CustomerPhone        string
	BookingDate          time.Time
	Location             Location
	NumberOfTents        int
	AddOns               AddOns
	HasChildren          bool
	SelectedCustomAddOns []string
	Notes                string
}

// DateOnly truncates t to its calendar date in UTC. Bookings and
// date/location locks carry no time-of-day component.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a calendar date as the lock key, e.g. "2025-06-01".
func DateKey(t time.Time) string {
	return DateOnly(t).Format(time.DateOnly)
}

// MinBookingDate returns the earliest bookable calendar date as of now.
func MinBookingDate(now time.Time) time.Time {
	return DateOnly(now).AddDate(0, 0, MinLeadTimeDays)
}

// ValidateSubmission checks a submission against the booking rules and
// returns a field->message map. Every rule is evaluated independently
// so the form can surface all problems at once; an empty map means the
// submission is acceptable. The same checks run client-side on each
// field change and here authoritatively before persistence.
func ValidateSubmission(sub Submission, now time.Time) domain.FieldErrors {
	fields := domain.FieldErrors{}

	if strings.TrimSpace(sub.CustomerName) == "" {
		fields["customerName"] = "Name is required"
	}

	switch {
	case strings.TrimSpace(sub.CustomerEmail) == "":
		fields["customerEmail"] = "Email is required"
	case !emailPattern.MatchString(sub.CustomerEmail):
		fields["customerEmail"] = "Please enter a valid email address"
	}

	if !strings.HasPrefix(sub.CustomerPhone, PhonePrefix) || len(sub.CustomerPhone) < minPhoneLength {
		fields["customerPhone"] = "Valid UAE phone number required (+971501234567)"
	}

	switch {
	case sub.BookingDate.IsZero():
		fields["bookingDate"] = "Booking date is required"
	case DateOnly(sub.BookingDate).Before(MinBookingDate(now)):
		fields["bookingDate"] = fmt.Sprintf("Booking date must be at least %d days from today", MinLeadTimeDays)
	}

	if !sub.Location.IsBookable() {
		fields["location"] = "Please select a valid location"
	}

	switch {
	case sub.NumberOfTents < MinTents || sub.NumberOfTents > MaxTents:
		fields["numberOfTents"] = fmt.Sprintf("Number of tents must be between %d and %d", MinTents, MaxTents)
	case sub.Location == LocationWadi && sub.NumberOfTents < MinWadiTents:
		fields["numberOfTents"] = fmt.Sprintf("Wadi location requires at least %d tents", MinWadiTents)
	}

	return fields
}
