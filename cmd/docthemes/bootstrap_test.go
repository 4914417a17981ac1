package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docthemes/internal/adapters/driving/cli"
	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func TestBootstrap_Ephemeral(t *testing.T) {
	dir := t.TempDir()

	svc, err := bootstrap(context.Background(), cli.Options{ConfigDir: dir, Ephemeral: true})

	require.NoError(t, err)
	require.NotNil(t, svc.Session)
	require.NotNil(t, svc.Settings)
	assert.Nil(t, svc.Close)
	assert.Equal(t, filepath.Join(dir, "config.toml"), svc.Settings.ConfigPath())
}

func TestBootstrap_SQLiteHistory(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DOCTHEMES_DATA_DIR", dataDir)

	svc, err := bootstrap(context.Background(), cli.Options{ConfigDir: t.TempDir()})

	require.NoError(t, err)
	require.NotNil(t, svc.Close)
	defer svc.Close()

	_, err = os.Stat(filepath.Join(dataDir, "history.db"))
	assert.NoError(t, err)
}

func TestBootstrap_ServerFlagIsValidated(t *testing.T) {
	_, err := bootstrap(context.Background(), cli.Options{
		ConfigDir: t.TempDir(),
		ServerURL: "not a url",
		Ephemeral: true,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBootstrap_EnvironmentOverridesConfig(t *testing.T) {
	t.Setenv("DOCTHEMES_TOP_K", "11")

	svc, err := bootstrap(context.Background(), cli.Options{ConfigDir: t.TempDir(), Ephemeral: true})
	require.NoError(t, err)

	settings, err := svc.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, 11, settings.TopK)
}
