package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nomadic-camps/booking-service/internal/domain/settings"
)

// SettingsService manages the single pricing configuration document.
type SettingsService struct {
	repo   settings.Repository
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo settings.Repository, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// Get returns the current settings. Defaults are returned when nothing
// has been stored yet.
func (s *SettingsService) Get(ctx context.Context) (*settings.Settings, error) {
	current, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &current, nil
}

// Replace validates and stores a full settings document. The document
// replaces the stored one wholesale; bookings priced before the change
// keep their recorded totals.
func (s *SettingsService) Replace(ctx context.Context, next settings.Settings) (*settings.Settings, error) {
	next.Normalize()
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Replace(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to store settings: %w", err)
	}

	s.logger.Info("settings replaced",
		zap.Float64("single_tent", next.TentPrices.SingleTent),
		zap.Float64("vat_rate", next.VATRate),
		zap.Int("custom_add_ons", len(next.CustomAddOns)),
	)
	return &next, nil
}
