package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/pkg/cache"
	"github.com/noah-isme/academic-records-api/pkg/config"
	"github.com/noah-isme/academic-records-api/pkg/database"
	"github.com/noah-isme/academic-records-api/pkg/storage"
)

// OpenCollectionStore builds the backend selected by cfg.Store.Driver and wraps it with
// instrumentation. The returned closer releases backend connections.
func OpenCollectionStore(ctx context.Context, cfg *config.Config, observer StoreObserver, logger *zap.Logger) (CollectionStore, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		inner  CollectionStore
		closer = noop
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		inner = NewMemoryStore()
	case "", config.StoreDriverFile:
		files, err := storage.NewLocalStorage(cfg.Store.FileDir)
		if err != nil {
			return nil, noop, err
		}
		inner = NewFileStore(files)
	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		open := func() (*sqlx.DB, error) { return database.NewPostgres(ctx, cfg.Database) }
		if cfg.Store.Driver == config.StoreDriverSQLite {
			open = func() (*sqlx.DB, error) { return database.NewSQLite(ctx, cfg.SQLite) }
		}
		db, err := open()
		if err != nil {
			return nil, noop, fmt.Errorf("connect %s: %w", cfg.Store.Driver, err)
		}
		sqlStore, err := NewSQLStore(db, cfg.Store.Table)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		inner, closer = sqlStore, db.Close
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		inner, closer = NewRedisStore(client, cfg.Redis.KeyPrefix), client.Close
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	logger.Info("collection store ready", zap.String("driver", cfg.Store.Driver))
	return NewInstrumentedStore(inner, observer, logger), closer, nil
}
