package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/nomadic-camps/booking-service/internal/domain/booking"
)

// DateLocationLockModel is the GORM model for the date_location_locks
// table. The primary key on the calendar-date column is what makes
// Acquire race-free: two submissions for the same unlocked date resolve
// at the database, not in application code.
type DateLocationLockModel struct {
	Date      string    `gorm:"primaryKey;size:10"`
	Location  string    `gorm:"not null;size:30"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DateLocationLockModel) TableName() string {
	return "date_location_locks"
}

// GormLockRepository is the GORM-based implementation of the lock repository.
type GormLockRepository struct {
	db *gorm.DB
}

// NewGormLockRepository creates a new GormLockRepository.
func NewGormLockRepository(db *gorm.DB) *GormLockRepository {
	return &GormLockRepository{db: db}
}

// Acquire atomically records loc for the date if it is still unlocked
// and returns whichever lock holds afterwards, plus whether this call
// inserted it. The insert-if-absent is a single upsert keyed on the
// date, so concurrent submissions for an unlocked date produce exactly
// one winner.
func (r *GormLockRepository) Acquire(ctx context.Context, date time.Time, loc bookingDomain.Location) (bookingDomain.DateLocationLock, bool, error) {
	now := time.Now().UTC()
	model := DateLocationLockModel{
		Date:      bookingDomain.DateKey(date),
		Location:  string(loc),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return bookingDomain.DateLocationLock{}, false, fmt.Errorf("failed to acquire date lock: %w", result.Error)
	}
	// Zero rows affected means the insert hit an existing row.
	created := result.RowsAffected > 0

	// Read back the winning row; on conflict it may name another location.
	var winner DateLocationLockModel
	if err := r.db.WithContext(ctx).
		Where("date = ?", model.Date).
		First(&winner).Error; err != nil {
		return bookingDomain.DateLocationLock{}, false, fmt.Errorf("failed to read date lock: %w", err)
	}

	return toDomainLock(&winner), created, nil
}

// Release deletes the lock for the date if it still names loc. Matching
// on both columns keeps a rollback from removing a lock another
// submission holds.
func (r *GormLockRepository) Release(ctx context.Context, date time.Time, loc bookingDomain.Location) error {
	if err := r.db.WithContext(ctx).
		Where("date = ? AND location = ?", bookingDomain.DateKey(date), string(loc)).
		Delete(&DateLocationLockModel{}).Error; err != nil {
		return fmt.Errorf("failed to release date lock: %w", err)
	}
	return nil
}

// Get retrieves the lock for a date, or nil when the date is open.
func (r *GormLockRepository) Get(ctx context.Context, date time.Time) (*bookingDomain.DateLocationLock, error) {
	var model DateLocationLockModel
	err := r.db.WithContext(ctx).
		Where("date = ?", bookingDomain.DateKey(date)).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get date lock: %w", err)
	}

	lock := toDomainLock(&model)
	return &lock, nil
}

func toDomainLock(m *DateLocationLockModel) bookingDomain.DateLocationLock {
	return bookingDomain.DateLocationLock{
		Date:      m.Date,
		Location:  bookingDomain.Location(m.Location),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
