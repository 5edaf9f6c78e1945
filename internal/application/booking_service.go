package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nomadic-camps/booking-service/internal/domain"
	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
	"github.com/nomadic-camps/booking-service/internal/domain/settings"
	"github.com/nomadic-camps/booking-service/internal/events"
	"github.com/nomadic-camps/booking-service/internal/notify"
	"github.com/nomadic-camps/booking-service/internal/payment"
)

const eventSource = "booking-service"

// BookingRequest holds the data submitted from the booking form.
type BookingRequest struct {
	CustomerName         string               `json:"customerName"`
	CustomerEmail        string               `json:"customerEmail"`
	CustomerPhone        string               `json:"customerPhone"`
	BookingDate          string               `json:"bookingDate"`
	Location             string               `json:"location"`
	NumberOfTents        int                  `json:"numberOfTents"`
	AddOns               bookingDomain.AddOns `json:"addOns"`
	HasChildren          bool                 `json:"hasChildren"`
	SelectedCustomAddOns []string             `json:"selectedCustomAddOns"`
	Notes                string               `json:"notes"`
}

// QuoteRequest holds the pricing-relevant subset of the form for the
// live preview endpoint.
type QuoteRequest struct {
	NumberOfTents        int                  `json:"numberOfTents"`
	Location             string               `json:"location"`
	AddOns               bookingDomain.AddOns `json:"addOns"`
	HasChildren          bool                 `json:"hasChildren"`
	SelectedCustomAddOns []string             `json:"selectedCustomAddOns"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                   uuid.UUID            `json:"id"`
	BookingNumber        string               `json:"bookingNumber"`
	CustomerName         string               `json:"customerName"`
	CustomerEmail        string               `json:"customerEmail"`
	CustomerPhone        string               `json:"customerPhone"`
	BookingDate          string               `json:"bookingDate"`
	Location             string               `json:"location"`
	NumberOfTents        int                  `json:"numberOfTents"`
	AddOns               bookingDomain.AddOns `json:"addOns"`
	HasChildren          bool                 `json:"hasChildren"`
	SelectedCustomAddOns []string             `json:"selectedCustomAddOns"`
	Notes                string               `json:"notes,omitempty"`
	Subtotal             float64              `json:"subtotal"`
	VAT                  float64              `json:"vat"`
	Total                float64              `json:"total"`
	IsPaid               bool                 `json:"isPaid"`
	PaidAt               *time.Time           `json:"paidAt,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// CreateBookingResult is returned after a successful submission.
type CreateBookingResult struct {
	BookingID     uuid.UUID               `json:"bookingId"`
	BookingNumber string                  `json:"bookingNumber"`
	Pricing       bookingDomain.Breakdown `json:"pricing"`
	CheckoutURL   string                  `json:"checkoutUrl,omitempty"`
}

// DateConstraintsDTO describes which locations remain selectable for a date.
type DateConstraintsDTO struct {
	Date               string   `json:"date"`
	LockedLocation     *string  `json:"lockedLocation"`
	AvailableLocations []string `json:"availableLocations"`
}

// BookingService orchestrates the booking use cases: validate, check
// the date/location constraint, price against the current settings
// snapshot, persist, and hand off to payment.
type BookingService struct {
	repo         bookingDomain.Repository
	locks        bookingDomain.LockRepository
	settingsRepo settings.Repository
	pricing      bookingDomain.PricingEngine
	payments     payment.Provider
	notifier     notify.Notifier
	producer     events.Publisher
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	locks bookingDomain.LockRepository,
	settingsRepo settings.Repository,
	pricing bookingDomain.PricingEngine,
	payments payment.Provider,
	notifier notify.Notifier,
	producer events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		locks:        locks,
		settingsRepo: settingsRepo,
		pricing:      pricing,
		payments:     payments,
		notifier:     notifier,
		producer:     producer,
		logger:       logger,
	}
}

// CreateBooking runs the full submission sequence. Validation and
// business-rule failures return before anything is persisted; a
// date/location conflict aborts the submission; payment initiation
// failure surfaces as a PaymentError with the booking already stored
// unpaid.
func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (*CreateBookingResult, error) {
	sub, fields := toSubmission(req)
	for field, msg := range bookingDomain.ValidateSubmission(sub, time.Now()) {
		if _, taken := fields[field]; !taken {
			fields[field] = msg
		}
	}
	if len(fields) > 0 {
		return nil, domain.NewFieldErrors(fields)
	}

	// Server-side snapshot is the pricing authority; the client's
	// preview may be stale if settings changed since it was rendered.
	snapshot, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	lock, lockCreated, err := s.locks.Acquire(ctx, sub.BookingDate, sub.Location)
	if err != nil {
		return nil, err
	}
	if lock.Location != sub.Location {
		return nil, domain.NewConflictError(
			fmt.Sprintf("This date is already booked for %s location", lock.Location))
	}

	breakdown := s.pricing.Quote(bookingDomain.QuoteParams{
		NumberOfTents:        sub.NumberOfTents,
		Location:             sub.Location,
		AddOns:               sub.AddOns,
		HasChildren:          sub.HasChildren,
		SelectedCustomAddOns: sub.SelectedCustomAddOns,
	}, snapshot)

	bk, err := bookingDomain.NewBooking(sub, breakdown)
	if err != nil {
		if lockCreated {
			s.rollbackLock(ctx, sub.BookingDate, sub.Location)
		}
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		// No booking persisted, so a lock this submission just created
		// must not keep the date blocked.
		if lockCreated {
			s.rollbackLock(ctx, sub.BookingDate, sub.Location)
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishBookingCreated(ctx, bk)

	session, err := s.payments.CreateSession(ctx, bk)
	if err != nil {
		s.logger.Error("payment session creation failed",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
		var paymentErr *domain.PaymentError
		if !errors.As(err, &paymentErr) {
			err = domain.NewPaymentError("failed to initiate payment", err)
		}
		return nil, err
	}

	bk.AttachPaymentSession(session.ID)
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to link payment session: %w", err)
	}

	return &CreateBookingResult{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		Pricing:       breakdown,
		CheckoutURL:   session.URL,
	}, nil
}

// rollbackLock releases a date lock this submission created when the
// booking behind it failed to persist. Release failure is logged only;
// the caller's error already describes what went wrong.
func (s *BookingService) rollbackLock(ctx context.Context, date time.Time, loc bookingDomain.Location) {
	if err := s.locks.Release(ctx, date, loc); err != nil {
		s.logger.Error("failed to release date lock after failed booking",
			zap.String("date", bookingDomain.DateKey(date)),
			zap.String("location", string(loc)),
			zap.Error(err),
		)
	}
}

// Quote computes a price preview against the current settings snapshot.
// It is deliberately tolerant of incomplete forms: no validation, no
// side effects, so the client can call it on every change.
func (s *BookingService) Quote(ctx context.Context, req QuoteRequest) (*bookingDomain.Breakdown, error) {
	snapshot, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	breakdown := s.pricing.Quote(bookingDomain.QuoteParams{
		NumberOfTents:        req.NumberOfTents,
		Location:             bookingDomain.Location(req.Location),
		AddOns:               req.AddOns,
		HasChildren:          req.HasChildren,
		SelectedCustomAddOns: req.SelectedCustomAddOns,
	}, snapshot)
	return &breakdown, nil
}

// ConfirmPayment handles the customer's return from checkout: verify
// the session with the provider, then mark the booking paid.
func (s *BookingService) ConfirmPayment(ctx context.Context, sessionID string) (*BookingDTO, error) {
	paid, err := s.payments.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, domain.NewPaymentError("payment has not completed for this session", nil)
	}
	return s.MarkPaidBySession(ctx, sessionID)
}

// MarkPaidBySession marks the booking linked to a checkout session as
// paid and dispatches notifications. The operation is idempotent: a
// booking already marked paid is returned unchanged, so provider
// retries and the duplicate webhook/return-leg pair are harmless.
// Notification failures are logged and never fail the payment.
func (s *BookingService) MarkPaidBySession(ctx context.Context, sessionID string) (*BookingDTO, error) {
	bk, err := s.repo.FindByPaymentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := bk.MarkPaid(); err != nil {
		var stateErr *domain.InvalidStateError
		if errors.As(err, &stateErr) {
			dto := toBookingDTO(bk)
			return &dto, nil
		}
		return nil, err
	}

	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	if err := s.notifier.SendBookingConfirmation(ctx, bk); err != nil {
		s.logger.Error("failed to send booking confirmation",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}
	if err := s.notifier.SendAdminAlert(ctx, bk); err != nil {
		s.logger.Error("failed to send admin alert",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}

	s.publishBookingPaid(ctx, bk)

	dto := toBookingDTO(bk)
	return &dto, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(bk)
	return &dto, nil
}

// ListBookings retrieves a filtered, paginated booking list, newest first.
func (s *BookingService) ListBookings(ctx context.Context, filter bookingDomain.ListFilter) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, filter.Page, filter.Limit)
	return &result, nil
}

// DateConstraints reports which locations remain selectable for a date.
func (s *BookingService) DateConstraints(ctx context.Context, date time.Time) (*DateConstraintsDTO, error) {
	lock, err := s.locks.Get(ctx, date)
	if err != nil {
		return nil, err
	}

	dto := &DateConstraintsDTO{Date: bookingDomain.DateKey(date)}
	if lock != nil {
		locked := string(lock.Location)
		dto.LockedLocation = &locked
		dto.AvailableLocations = []string{locked}
		return dto, nil
	}

	for _, loc := range bookingDomain.BookableLocations() {
		dto.AvailableLocations = append(dto.AvailableLocations, string(loc))
	}
	return dto, nil
}

// --- Helpers ---

// toSubmission maps the wire request to a domain submission, collecting
// parse problems as field errors so they merge with validation output.
func toSubmission(req BookingRequest) (bookingDomain.Submission, domain.FieldErrors) {
	fields := domain.FieldErrors{}

	var bookingDate time.Time
	if req.BookingDate != "" {
		parsed, err := time.Parse(time.DateOnly, req.BookingDate)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, req.BookingDate)
		}
		if err != nil {
			fields["bookingDate"] = "Booking date must be a valid date"
		} else {
			bookingDate = parsed
		}
	}

	return bookingDomain.Submission{
		CustomerName:         req.CustomerName,
		CustomerEmail:        req.CustomerEmail,
		CustomerPhone:        req.CustomerPhone,
		BookingDate:          bookingDate,
		Location:             bookingDomain.Location(req.Location),
		NumberOfTents:        req.NumberOfTents,
		AddOns:               req.AddOns,
		HasChildren:          req.HasChildren,
		SelectedCustomAddOns: req.SelectedCustomAddOns,
		Notes:                req.Notes,
	}, fields
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                   bk.ID(),
		BookingNumber:        bk.BookingNumber(),
		CustomerName:         bk.CustomerName(),
		CustomerEmail:        bk.CustomerEmail(),
		CustomerPhone:        bk.CustomerPhone(),
		BookingDate:          bookingDomain.DateKey(bk.BookingDate()),
		Location:             string(bk.Location()),
		NumberOfTents:        bk.NumberOfTents(),
		AddOns:               bk.AddOns(),
		HasChildren:          bk.HasChildren(),
		SelectedCustomAddOns: bk.SelectedCustomAddOns(),
		Notes:                bk.Notes(),
		Subtotal:             bk.Subtotal(),
		VAT:                  bk.VAT(),
		Total:                bk.Total(),
		IsPaid:               bk.IsPaid(),
		PaidAt:               bk.PaidAt(),
		CreatedAt:            bk.CreatedAt(),
		UpdatedAt:            bk.UpdatedAt(),
	}
}

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		BookingDate:   bookingDomain.DateKey(bk.BookingDate()),
		Location:      string(bk.Location()),
		NumberOfTents: bk.NumberOfTents(),
		Total:         bk.Total(),
		Currency:      "AED",
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, evt)
}

func (s *BookingService) publishBookingPaid(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingPaidEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		Total:         bk.Total(),
		Currency:      "AED",
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingPaid, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
