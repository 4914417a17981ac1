package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docthemes/internal/adapters/driven/answering/httpapi"
	"github.com/custodia-labs/docthemes/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docthemes/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docthemes/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docthemes/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/cli"
	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
	"github.com/custodia-labs/docthemes/internal/core/services"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// bootstrap wires the driven adapters into the core services.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, env.NewOverrides(env.DefaultDotenvFile))
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if opts.ServerURL != "" {
		settings.ServerURL = opts.ServerURL
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}
	logger.Debug("Answering service: %s", settings.ServerURL)

	store, closeStore, err := openSnapshotStore(settings, opts.Ephemeral)
	if err != nil {
		return nil, err
	}

	client := httpapi.NewClientFromSettings(settings)
	session := services.NewSession(client, store, settings.HistoryKey)

	return &cli.Services{
		Session:  session,
		Settings: settingsService,
		Close:    closeStore,
	}, nil
}

// openSnapshotStore opens the history database, or an in-memory store for
// ephemeral sessions.
func openSnapshotStore(settings *domain.AppSettings, ephemeral bool) (driven.SnapshotStore, func() error, error) {
	if ephemeral {
		logger.Debug("Ephemeral session: history is kept in memory")
		return memory.NewSnapshotStore(), nil, nil
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	logger.Debug("History database: %s", store.Path())
	return store, store.Close, nil
}
