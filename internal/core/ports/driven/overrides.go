package driven

import "github.com/custodia-labs/docthemes/internal/core/domain"

// SettingsOverrides applies settings from outside the config file,
// such as environment variables.
type SettingsOverrides interface {
	// Apply overwrites fields of settings that are set externally.
	Apply(settings *domain.AppSettings) error
}
