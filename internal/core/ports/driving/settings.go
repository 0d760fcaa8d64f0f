package driving

import "github.com/custodia-labs/paperdex/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults filled in.
	Get() (*domain.AppSettings, error)

	// Set validates and persists one setting by key.
	Set(key, value string) error

	// Keys returns every settable key.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
