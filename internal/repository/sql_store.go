package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type collectionRow struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SQLStore keeps collections as rows of a key/value table. It works with any sqlx
// driver that supports INSERT ... ON CONFLICT (PostgreSQL, SQLite).
type SQLStore struct {
	db    *sqlx.DB
	table string
}

// NewSQLStore constructs a SQL-backed store writing to table.
func NewSQLStore(db *sqlx.DB, table string) (*SQLStore, error) {
	if table == "" {
		table = "collections"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid collection table name %q", table)
	}
	return &SQLStore{db: db, table: table}, nil
}

// EnsureSchema creates the backing table when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure %s table: %w", s.table, err)
	}
	return nil
}

// Load implements CollectionStore.
func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, error) {
	query := s.db.Rebind(fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.table))
	var value string
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, missing(key)
		}
		return nil, fmt.Errorf("select collection %s: %w", key, err)
	}
	return []byte(value), nil
}

// Save implements CollectionStore.
func (s *SQLStore) Save(ctx context.Context, key string, payload []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at)
VALUES (:key, :value, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.table)
	row := collectionRow{Key: key, Value: string(payload), UpdatedAt: time.Now().UTC()}
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert collection %s: %w", key, err)
	}
	return nil
}
