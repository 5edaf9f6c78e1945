package settings

import "context"

// Repository defines the persistence contract for the settings document.
type Repository interface {
	// Load retrieves the current settings, or the defaults when no
	// admin has saved a document yet.
	Load(ctx context.Context) (Settings, error)

	// Replace overwrites the stored settings document in full.
	Replace(ctx context.Context, s Settings) error
}
