package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyServerURL  = "server.url"
	keyTimeout    = "server.timeout"
	keyRateLimit  = "server.rate_limit"
	keyTopK       = "ask.top_k"
	keyDocType    = "ask.doc_type"
	keyDataDir    = "history.data_dir"
	keyHistoryKey = "history.key"
)

// SettingsService resolves client settings from the config file and
// optional external overrides.
type SettingsService struct {
	configStore driven.ConfigStore
	overrides   driven.SettingsOverrides
}

// NewSettingsService creates a new settings service.
// The overrides parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, overrides driven.SettingsOverrides) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		overrides:   overrides,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		ServerURL:  s.getString(keyServerURL, defaults.ServerURL),
		Timeout:    s.getDuration(keyTimeout, defaults.Timeout),
		RateLimit:  s.getFloat(keyRateLimit, defaults.RateLimit),
		TopK:       s.getInt(keyTopK, defaults.TopK),
		DocType:    s.configStore.GetString(keyDocType),
		DataDir:    s.configStore.GetString(keyDataDir),
		HistoryKey: s.getString(keyHistoryKey, defaults.HistoryKey),
	}

	if s.overrides != nil {
		if err := s.overrides.Apply(settings); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists settings to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyServerURL, settings.ServerURL},
		{keyTimeout, settings.Timeout.String()},
		{keyRateLimit, settings.RateLimit},
		{keyTopK, settings.TopK},
		{keyDocType, settings.DocType},
		{keyDataDir, settings.DataDir},
		{keyHistoryKey, settings.HistoryKey},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return *domain.DefaultAppSettings()
}

// ConfigPath returns the config file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration accepts either a Go duration string ("90s") or whole seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return defaultVal
		}
		return d
	case int64:
		return time.Duration(v) * time.Second
	case int:
		return time.Duration(v) * time.Second
	default:
		return defaultVal
	}
}
