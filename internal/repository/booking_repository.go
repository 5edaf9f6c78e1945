package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nomadic-camps/booking-service/internal/domain"
	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber    string          `gorm:"uniqueIndex;not null;size:20"`
	CustomerName     string          `gorm:"not null;size:200"`
	CustomerEmail    string          `gorm:"not null;size:200;index"`
	CustomerPhone    string          `gorm:"not null;size:30"`
	BookingDate      time.Time       `gorm:"not null;index"`
	Location         string          `gorm:"not null;size:30;index"`
	NumberOfTents    int             `gorm:"not null"`
	AddOns           json.RawMessage `gorm:"type:jsonb;not null"`
	HasChildren      bool            `gorm:"not null;default:false"`
	CustomAddOnIDs   json.RawMessage `gorm:"type:jsonb"`
	Notes            string          `gorm:"size:1000"`
	Subtotal         float64         `gorm:"not null"`
	VAT              float64         `gorm:"not null"`
	Total            float64         `gorm:"not null"`
	IsPaid           bool            `gorm:"not null;default:false;index"`
	PaymentSessionID string          `gorm:"size:200;index"`
	PaidAt           *time.Time      `gorm:""`
	CreatedAt        time.Time       `gorm:"not null;index"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model, err := toBookingModel(b)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists the mutable state of an existing booking. The
// financial fields are frozen at creation time and deliberately not
// part of the update set.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model, err := toBookingModel(b)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"is_paid":            model.IsPaid,
			"payment_session_id": model.PaymentSessionID,
			"paid_at":            model.PaidAt,
			"notes":              model.Notes,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", model.ID.String())
	}
	return nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByPaymentSession retrieves the booking linked to a checkout session.
func (r *GormBookingRepository) FindByPaymentSession(ctx context.Context, sessionID string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("payment_session_id = ?", sessionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", sessionID)
		}
		return nil, fmt.Errorf("failed to find booking by payment session: %w", err)
	}
	return toDomainBooking(&model)
}

// List retrieves bookings matching the filter, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})

	if filter.Search != "" {
		// LOWER on both sides keeps the match case-insensitive on
		// PostgreSQL, where plain LIKE is case-sensitive.
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ? OR LOWER(customer_phone) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", string(filter.Location))
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	var models []BookingModel
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = b
	}
	return bookings, total, nil
}

// StatRows retrieves the aggregation inputs for dashboard stats and charts.
func (r *GormBookingRepository) StatRows(ctx context.Context) ([]bookingDomain.StatRow, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Select("booking_date", "location", "total", "is_paid", "created_at").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch stat rows: %w", err)
	}

	rows := make([]bookingDomain.StatRow, len(models))
	for i, m := range models {
		rows[i] = bookingDomain.StatRow{
			BookingDate: m.BookingDate,
			Location:    bookingDomain.Location(m.Location),
			Total:       m.Total,
			IsPaid:      m.IsPaid,
			CreatedAt:   m.CreatedAt,
		}
	}
	return rows, nil
}

// --- Conversion helpers ---

func toBookingModel(b *bookingDomain.Booking) (*BookingModel, error) {
	addOnsJSON, err := json.Marshal(b.AddOns())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal add-ons: %w", err)
	}

	customIDs := b.SelectedCustomAddOns()
	if customIDs == nil {
		customIDs = []string{}
	}
	customIDsJSON, err := json.Marshal(customIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal custom add-on ids: %w", err)
	}

	return &BookingModel{
		ID:               b.ID(),
		BookingNumber:    b.BookingNumber(),
		CustomerName:     b.CustomerName(),
		CustomerEmail:    b.CustomerEmail(),
		CustomerPhone:    b.CustomerPhone(),
		BookingDate:      b.BookingDate(),
		Location:         string(b.Location()),
		NumberOfTents:    b.NumberOfTents(),
		AddOns:           addOnsJSON,
		HasChildren:      b.HasChildren(),
		CustomAddOnIDs:   customIDsJSON,
		Notes:            b.Notes(),
		Subtotal:         b.Subtotal(),
		VAT:              b.VAT(),
		Total:            b.Total(),
		IsPaid:           b.IsPaid(),
		PaymentSessionID: b.PaymentSessionID(),
		PaidAt:           b.PaidAt(),
		CreatedAt:        b.CreatedAt(),
		UpdatedAt:        b.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var addOns bookingDomain.AddOns
	if err := json.Unmarshal(m.AddOns, &addOns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal add-ons: %w", err)
	}

	customIDs := []string{}
	if len(m.CustomAddOnIDs) > 0 {
		if err := json.Unmarshal(m.CustomAddOnIDs, &customIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom add-on ids: %w", err)
		}
	}

	location, err := bookingDomain.ParseLocation(m.Location)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.CustomerName,
		m.CustomerEmail,
		m.CustomerPhone,
		m.BookingDate,
		location,
		m.NumberOfTents,
		addOns,
		m.HasChildren,
		customIDs,
		m.Notes,
		m.Subtotal,
		m.VAT,
		m.Total,
		m.IsPaid,
		m.PaymentSessionID,
		m.PaidAt,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
