// Package sqlstore implements store.Store as a key/value table on
// database/sql, backed by SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/splitter-dev/splitter/internal/store"
)

var _ store.Store = (*Store)(nil)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect holds the statements that differ between drivers.
type dialect struct {
	load string
	save string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		load: `SELECT data FROM collections WHERE name = ?`,
		save: `INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		       ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	},
	DriverPostgres: {
		load: `SELECT data FROM collections WHERE name = $1`,
		save: `INSERT INTO collections (name, data, updated_at) VALUES ($1, $2, $3)
		       ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
	},
}

// Store implements store.Store on a SQL database.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects with the named driver and runs migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// A single connection serializes writers and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db, dialect: d}, nil
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return Open(ctx, DriverSQLite, path)
}

// OpenPostgres connects to the database described by dsn.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	return Open(ctx, DriverPostgres, dsn)
}

// Load returns the stored collection, or nil when it was never saved.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.dialect.load, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return []byte(data), nil
}

// Save upserts the collection.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.save, key, string(data), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
