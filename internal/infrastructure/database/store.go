package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/adapter/storage"
	"github.com/eslsoft/neurostudy/internal/infrastructure/config"
	"github.com/eslsoft/neurostudy/internal/repository"
)

// NewStore opens the key-value backend selected by storage.driver.
func NewStore(cfg *config.Config, logger *logrus.Logger) (repository.KeyValueStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		store repository.KeyValueStore
		err   error
	)
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store = storage.NewMemoryStore()
	case config.DriverSQLite:
		store, err = newSQLiteStore(ctx, cfg, logger)
	case config.DriverPostgres:
		store, err = newPostgresStore(ctx, cfg, logger)
	case config.DriverRedis:
		store, err = storage.OpenRedisStore(ctx, cfg.Storage.DSN, cfg.Storage.Namespace)
	case config.DriverMongo:
		store, err = storage.OpenMongoStore(ctx, cfg.Storage.DSN, cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection)
	default:
		err = fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.WithField("driver", cfg.Storage.Driver).Debug("storage opened")
	return store, func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("close storage")
		}
	}, nil
}

func newSQLiteStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*storage.SQLStore, error) {
	rawDB, err := sql.Open("sqlite3", cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store, err := storage.NewSQLStore(ctx, debugDriver(cfg, logger, entsql.OpenDB(dialect.SQLite, rawDB)))
	if err != nil {
		rawDB.Close()
		return nil, err
	}
	return store, nil
}

// postgresStore also owns the pgx pool behind the database/sql handle.
type postgresStore struct {
	*storage.SQLStore
	closePool func()
}

func (s *postgresStore) Close() error {
	defer s.closePool()
	return s.SQLStore.Close()
}

func newPostgresStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*postgresStore, error) {
	pool, closePool, err := NewConnection(cfg, logger)
	if err != nil {
		return nil, err
	}

	// The pool's tracer already logs statements, so the ent driver is left undecorated.
	rawDB := stdlib.OpenDBFromPool(pool)
	store, err := storage.NewSQLStore(ctx, entsql.OpenDB(dialect.Postgres, rawDB))
	if err != nil {
		rawDB.Close()
		closePool()
		return nil, err
	}
	return &postgresStore{SQLStore: store, closePool: closePool}, nil
}

func debugDriver(cfg *config.Config, logger *logrus.Logger, drv dialect.Driver) dialect.Driver {
	if !cfg.Storage.LogSQL {
		return drv
	}
	entry := logger.WithField("component", "sql")
	return dialect.DebugWithContext(drv, func(ctx context.Context, args ...any) {
		entry.WithContext(ctx).Debug(args...)
	})
}
