package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStore keeps partitions as rows of a two-column key/value table.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore validates the table name, which is interpolated into SQL.
func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{db: db, table: table}, nil
}

// EnsureSchema creates the partition table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, p.table))
	return err
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, p.table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, p.table),
		key, string(value))
	return err
}

func (p *PostgresStore) Backend() string {
	return "postgres"
}
