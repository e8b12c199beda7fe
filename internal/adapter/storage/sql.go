package storage

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/neurostudy/internal/repository"
)

const recordsTable = "records"

// SQLStore keeps records in a single two-column table. Statements are built with
// the ent SQL builder so the same code serves SQLite and PostgreSQL.
type SQLStore struct {
	drv dialect.Driver
}

var _ repository.KeyValueStore = (*SQLStore)(nil)

// NewSQLStore wraps an ent driver and makes sure the records table exists.
// The driver may be wrapped with dialect.DebugWithContext to log statements.
func NewSQLStore(ctx context.Context, drv dialect.Driver) (*SQLStore, error) {
	switch drv.Dialect() {
	case dialect.SQLite, dialect.Postgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", drv.Dialect())
	}
	s := &SQLStore{drv: drv}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS records (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if err := s.drv.Exec(ctx, ddl, []any{}, nil); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	query, args := s.builder().
		Select("value").
		From(entsql.Table(recordsTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return "", false, fmt.Errorf("select record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", false, fmt.Errorf("select record: %w", err)
		}
		return "", false, nil
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("scan record: %w", err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query, args := s.builder().
		Insert(recordsTable).
		Columns("key", "value").
		Values(key, value).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query, args := s.builder().
		Delete(recordsTable).
		Where(entsql.EQ("key", key)).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	selector := s.builder().
		Select("key").
		From(entsql.Table(recordsTable)).
		OrderBy("key")
	if prefix != "" {
		selector.Where(entsql.HasPrefix("key", prefix))
	}
	query, args := selector.Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan record key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return keys, nil
}

func (s *SQLStore) Close() error {
	return s.drv.Close()
}
