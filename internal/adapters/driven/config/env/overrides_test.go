package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func TestOverrides_NoVariablesKeepsSettings(t *testing.T) {
	settings := domain.DefaultAppSettings()
	want := *settings

	require.NoError(t, NewOverrides().Apply(settings))
	assert.Equal(t, want, *settings)
}

func TestOverrides_EnvironmentWins(t *testing.T) {
	t.Setenv("DOCTHEMES_SERVER_URL", "https://themes.example.com")
	t.Setenv("DOCTHEMES_TIMEOUT", "45s")
	t.Setenv("DOCTHEMES_TOP_K", "9")
	t.Setenv("DOCTHEMES_RATE_LIMIT", "0.5")
	t.Setenv("DOCTHEMES_DATA_DIR", "/tmp/dt")

	settings := domain.DefaultAppSettings()
	require.NoError(t, NewOverrides().Apply(settings))

	assert.Equal(t, "https://themes.example.com", settings.ServerURL)
	assert.Equal(t, 45*time.Second, settings.Timeout)
	assert.Equal(t, 9, settings.TopK)
	assert.InDelta(t, 0.5, settings.RateLimit, 1e-9)
	assert.Equal(t, "/tmp/dt", settings.DataDir)
	assert.Equal(t, domain.DefaultHistoryKey, settings.HistoryKey)
}

func TestOverrides_InvalidValue(t *testing.T) {
	t.Setenv("DOCTHEMES_TOP_K", "many")

	err := NewOverrides().Apply(domain.DefaultAppSettings())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOverrides_DotenvFile(t *testing.T) {
	// godotenv.Load sets process variables; register them for cleanup.
	t.Setenv("DOCTHEMES_DOC_TYPE", "")
	require.NoError(t, os.Unsetenv("DOCTHEMES_DOC_TYPE"))

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("DOCTHEMES_DOC_TYPE=pdf\n"), 0600))

	settings := domain.DefaultAppSettings()
	require.NoError(t, NewOverrides(file).Apply(settings))
	assert.Equal(t, "pdf", settings.DocType)
}

func TestOverrides_DotenvDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("DOCTHEMES_DOC_TYPE", "docx")

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("DOCTHEMES_DOC_TYPE=pdf\n"), 0600))

	settings := domain.DefaultAppSettings()
	require.NoError(t, NewOverrides(file).Apply(settings))
	assert.Equal(t, "docx", settings.DocType)
}

func TestOverrides_MissingDotenvSkipped(t *testing.T) {
	file := filepath.Join(t.TempDir(), "absent.env")
	assert.NoError(t, NewOverrides(file).Apply(domain.DefaultAppSettings()))
}
