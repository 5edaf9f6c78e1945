package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nomadic-camps/booking-service/internal/domain"
	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
	"github.com/nomadic-camps/booking-service/internal/domain/settings"
	"github.com/nomadic-camps/booking-service/internal/events"
	"github.com/nomadic-camps/booking-service/internal/payment"
)

// fakeBookingRepo is an in-memory booking repository.
type fakeBookingRepo struct {
	bookings  map[uuid.UUID]*bookingDomain.Booking
	saveErr   error
	updateErr error

	// statRows, when set, overrides the derived rows.
	statRows []bookingDomain.StatRow
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*bookingDomain.Booking{}}
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return b, nil
}

func (r *fakeBookingRepo) FindByPaymentSession(_ context.Context, sessionID string) (*bookingDomain.Booking, error) {
	for _, b := range r.bookings {
		if b.PaymentSessionID() == sessionID {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", sessionID)
}

func (r *fakeBookingRepo) List(_ context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		if filter.Location != "" && b.Location() != filter.Location {
			continue
		}
		if filter.IsPaid != nil && b.IsPaid() != *filter.IsPaid {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt().After(all[j].CreatedAt())
	})
	return all, int64(len(all)), nil
}

func (r *fakeBookingRepo) StatRows(_ context.Context) ([]bookingDomain.StatRow, error) {
	if r.statRows != nil {
		return r.statRows, nil
	}
	var rows []bookingDomain.StatRow
	for _, b := range r.bookings {
		rows = append(rows, bookingDomain.StatRow{
			BookingDate: b.BookingDate(),
			Location:    b.Location(),
			Total:       b.Total(),
			IsPaid:      b.IsPaid(),
			CreatedAt:   b.CreatedAt(),
		})
	}
	return rows, nil
}

// fakeLockRepo mimics the insert-if-absent lock semantics in memory.
type fakeLockRepo struct {
	locks      map[string]bookingDomain.DateLocationLock
	acquireErr error
	releaseErr error
	releases   int
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: map[string]bookingDomain.DateLocationLock{}}
}

func (r *fakeLockRepo) Acquire(_ context.Context, date time.Time, loc bookingDomain.Location) (bookingDomain.DateLocationLock, bool, error) {
	if r.acquireErr != nil {
		return bookingDomain.DateLocationLock{}, false, r.acquireErr
	}
	key := bookingDomain.DateKey(date)
	if existing, ok := r.locks[key]; ok {
		return existing, false, nil
	}
	lock := bookingDomain.DateLocationLock{Date: key, Location: loc}
	r.locks[key] = lock
	return lock, true, nil
}

func (r *fakeLockRepo) Release(_ context.Context, date time.Time, loc bookingDomain.Location) error {
	if r.releaseErr != nil {
		return r.releaseErr
	}
	key := bookingDomain.DateKey(date)
	if existing, ok := r.locks[key]; ok && existing.Location == loc {
		delete(r.locks, key)
		r.releases++
	}
	return nil
}

func (r *fakeLockRepo) Get(_ context.Context, date time.Time) (*bookingDomain.DateLocationLock, error) {
	if lock, ok := r.locks[bookingDomain.DateKey(date)]; ok {
		return &lock, nil
	}
	return nil, nil
}

// fakeSettingsRepo stores one document in memory.
type fakeSettingsRepo struct {
	doc     *settings.Settings
	loadErr error
}

func (r *fakeSettingsRepo) Load(_ context.Context) (settings.Settings, error) {
	if r.loadErr != nil {
		return settings.Settings{}, r.loadErr
	}
	if r.doc == nil {
		return settings.Defaults(), nil
	}
	return *r.doc, nil
}

func (r *fakeSettingsRepo) Replace(_ context.Context, s settings.Settings) error {
	r.doc = &s
	return nil
}

// fakeProvider is a scriptable payment provider.
type fakeProvider struct {
	sessions   int
	createErr  error
	verifyErr  error
	paid       map[string]bool
	lastAmount float64
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{paid: map[string]bool{}}
}

func (p *fakeProvider) CreateSession(_ context.Context, b *bookingDomain.Booking) (payment.Session, error) {
	if p.createErr != nil {
		return payment.Session{}, p.createErr
	}
	p.sessions++
	p.lastAmount = b.Total()
	id := fmt.Sprintf("cs_test_%d", p.sessions)
	return payment.Session{ID: id, URL: "https://checkout.example.com/" + id}, nil
}

func (p *fakeProvider) VerifySession(_ context.Context, sessionID string) (bool, error) {
	if p.verifyErr != nil {
		return false, p.verifyErr
	}
	return p.paid[sessionID], nil
}

// fakeNotifier records sent emails.
type fakeNotifier struct {
	confirmations []string
	adminAlerts   []string
	sendErr       error
}

func (n *fakeNotifier) SendBookingConfirmation(_ context.Context, b *bookingDomain.Booking) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.confirmations = append(n.confirmations, b.BookingNumber())
	return nil
}

func (n *fakeNotifier) SendAdminAlert(_ context.Context, b *bookingDomain.Booking) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.adminAlerts = append(n.adminAlerts, b.BookingNumber())
	return nil
}

// fakePublisher records published cloud events.
type fakePublisher struct {
	published []events.CloudEvent
	topics    []string
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, event events.CloudEvent) error {
	p.published = append(p.published, event)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	types := make([]string, len(p.published))
	for i, e := range p.published {
		types[i] = e.Type
	}
	return types
}
