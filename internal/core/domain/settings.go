package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Default settings values.
const (
	DefaultServerURL  = "http://localhost:8000"
	DefaultTimeout    = 120 * time.Second
	DefaultTopK       = 5
	DefaultRateLimit  = 5.0
	DefaultHistoryKey = "chat_history"
)

// AppSettings holds the effective client configuration.
// The env tags name the environment variables that override config.toml.
type AppSettings struct {
	// ServerURL is the base URL of the answering service.
	ServerURL string `env:"DOCTHEMES_SERVER_URL"`

	// Timeout bounds each request to the answering service.
	Timeout time.Duration `env:"DOCTHEMES_TIMEOUT"`

	// TopK is the default number of chunks requested per question.
	TopK int `env:"DOCTHEMES_TOP_K"`

	// RateLimit caps outgoing requests per second. Zero disables throttling.
	RateLimit float64 `env:"DOCTHEMES_RATE_LIMIT"`

	// DataDir holds the history database. Empty uses ~/.docthemes/data.
	DataDir string `env:"DOCTHEMES_DATA_DIR"`

	// HistoryKey is the snapshot key the history is stored under.
	HistoryKey string `env:"DOCTHEMES_HISTORY_KEY"`

	// DocType is the default document type filter. Empty means all.
	DocType string `env:"DOCTHEMES_DOC_TYPE"`
}

// DefaultAppSettings returns settings with all defaults applied.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		ServerURL:  DefaultServerURL,
		Timeout:    DefaultTimeout,
		TopK:       DefaultTopK,
		RateLimit:  DefaultRateLimit,
		HistoryKey: DefaultHistoryKey,
	}
}

// Validate checks the settings for obviously unusable values.
func (s *AppSettings) Validate() error {
	if strings.TrimSpace(s.ServerURL) == "" {
		return fmt.Errorf("%w: server URL is required", ErrInvalidInput)
	}
	u, err := url.Parse(s.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server URL %q is not an absolute URL", ErrInvalidInput, s.ServerURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: server URL scheme must be http or https", ErrInvalidInput)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidInput)
	}
	if s.TopK < 0 {
		return fmt.Errorf("%w: top_k must not be negative", ErrInvalidInput)
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidInput)
	}
	if strings.TrimSpace(s.HistoryKey) == "" {
		return fmt.Errorf("%w: history key is required", ErrInvalidInput)
	}
	return nil
}

// AskDefaults returns the ask options implied by these settings.
func (s *AppSettings) AskDefaults() AskOptions {
	return AskOptions{
		SortBy:  SortByRelevance,
		TopK:    s.TopK,
		DocType: s.DocType,
	}
}
