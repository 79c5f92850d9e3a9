package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"tilecraft.ai/internal/config"
	"tilecraft.ai/internal/persistence/saves"
	"tilecraft.ai/internal/sim/world"
	"tilecraft.ai/internal/transport/httpapi"
)

// saveBackend is what the world saves through. service is nil for the remote backend,
// in which case this process does not serve /api/save itself.
type saveBackend struct {
	saver   world.Saver
	service *saves.Service
	store   saves.Store
}

func (b *saveBackend) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

func openSaveBackend(ctx context.Context, cfg config.SaveConfig, dataDir string, logger *zap.Logger) (*saveBackend, error) {
	var store saves.Store
	switch cfg.Backend {
	case "memory":
		store = saves.NewMemoryStore()
	case "sqlite":
		path := cfg.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		s, err := saves.OpenSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		store = s
	case "postgres":
		s, err := saves.OpenPostgres(ctx, saves.PostgresConfig{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		store = s
	case "remote":
		return &saveBackend{saver: httpapi.NewClient(cfg.RemoteURL, cfg.Timeout)}, nil
	default:
		return nil, fmt.Errorf("unsupported save backend: %s", cfg.Backend)
	}
	svc := saves.NewService(store, logger.Named("saves"))
	return &saveBackend{saver: svc, service: svc, store: store}, nil
}
