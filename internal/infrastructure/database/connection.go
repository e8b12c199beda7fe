package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/infrastructure/config"
)

// NewConnection creates a new pgx connection pool
func NewConnection(cfg *config.Config, logger *logrus.Logger) (*pgxpool.Pool, func(), error) {
	if cfg.Storage.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("connection pool only supports postgres, got driver %q", cfg.Storage.Driver)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Storage.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = 10

	if cfg.Storage.LogSQL {
		entry := logger.WithField("component", "pgx")
		poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				entry.WithFields(logrus.Fields(data)).Log(traceLevel(lvl), msg)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, pool.Close, nil
}

func traceLevel(lvl tracelog.LogLevel) logrus.Level {
	switch lvl {
	case tracelog.LogLevelError:
		return logrus.ErrorLevel
	case tracelog.LogLevelWarn:
		return logrus.WarnLevel
	case tracelog.LogLevelInfo:
		return logrus.InfoLevel
	case tracelog.LogLevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}
