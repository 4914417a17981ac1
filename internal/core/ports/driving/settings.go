package driving

import "github.com/custodia-labs/docthemes/internal/core/domain"

// SettingsService resolves the effective client settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then config file,
	// then environment overrides.
	Get() (*domain.AppSettings, error)

	// Save persists settings to the config file.
	Save(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns the config file location.
	ConfigPath() string
}
