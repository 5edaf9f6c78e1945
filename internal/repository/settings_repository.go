package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nomadic-camps/booking-service/internal/domain/settings"
)

// settingsRowID pins the settings document to a single row; admin
// edits are full replaces of that row, last write wins.
const settingsRowID = 1

// SettingsModel is the GORM model for the settings table.
type SettingsModel struct {
	ID        uint            `gorm:"primaryKey"`
	Document  json.RawMessage `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SettingsModel) TableName() string {
	return "settings"
}

// GormSettingsRepository is the GORM-based implementation of the
// settings repository.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository.
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Load retrieves the current settings, or the defaults when no admin
// has saved a document yet.
func (r *GormSettingsRepository) Load(ctx context.Context) (settings.Settings, error) {
	var model SettingsModel
	err := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settings.Defaults(), nil
		}
		return settings.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	var s settings.Settings
	if err := json.Unmarshal(model.Document, &s); err != nil {
		return settings.Settings{}, fmt.Errorf("failed to unmarshal settings document: %w", err)
	}
	s.Normalize()
	return s, nil
}

// Replace overwrites the stored settings document in full.
func (r *GormSettingsRepository) Replace(ctx context.Context, s settings.Settings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings document: %w", err)
	}

	model := SettingsModel{
		ID:        settingsRowID,
		Document:  doc,
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
