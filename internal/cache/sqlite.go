package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLiteFileName is the database file created inside the cache directory.
const SQLiteFileName = "responses.db"

// SQLiteCache keeps responses in a single sqlite database.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) <dir>/responses.db. The dir ":memory:" opens
// a private in-memory database.
func OpenSQLite(dir string) (*SQLiteCache, error) {
	dsn := ":memory:"

	if dir != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}

		dsn = filepath.Join(dir, SQLiteFileName)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}

	// a single connection keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Get reads a stored response.
func (c *SQLiteCache) Get(ctx context.Context, season int, endpoint string) ([]byte, error) {
	var body []byte

	err := c.db.QueryRowContext(ctx,
		`SELECT body FROM responses WHERE season = ? AND endpoint = ?`,
		season, endpoint,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %d/%s: %w", season, endpoint, err)
	}

	return body, nil
}

// Put stores a response, replacing any previous one.
func (c *SQLiteCache) Put(ctx context.Context, season int, endpoint string, body []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO responses (season, endpoint, body, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(season, endpoint) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		season, endpoint, body, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry %d/%s: %w", season, endpoint, err)
	}

	return nil
}

// Close releases the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
