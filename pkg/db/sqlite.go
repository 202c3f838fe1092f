package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"play-extract/pkg/domain"
)

// SQLiteClient stores play records in a local SQLite database file.
type SQLiteClient struct {
	path string
	db   *sql.DB
}

// NewSQLiteClient constructs a client for the database at path
func NewSQLiteClient(path string) *SQLiteClient {
	return &SQLiteClient{path: path}
}

// Connect opens the database, applies pragmas and brings the schema up to date.
func (c *SQLiteClient) Connect(ctx context.Context) error {
	if c.path == "" {
		return fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	// a single connection keeps pragmas in effect for every statement
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := ApplyMigrations(db, DialectSQLite); err != nil {
		_ = db.Close()
		return err
	}

	c.db = db
	return nil
}

// Close closes the underlying database connection.
func (c *SQLiteClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the underlying handle
func (c *SQLiteClient) DB() *sql.DB {
	return c.db
}

// SaveRecord upserts record by name
func (c *SQLiteClient) SaveRecord(ctx context.Context, record *domain.PlayRecord) (string, error) {
	if err := c.records().save(ctx, record); err != nil {
		return "", err
	}
	return fmt.Sprintf("sqlite:%s#%s", c.path, record.Name), nil
}

// GetAllSourceURLs returns the source URLs of every stored record
func (c *SQLiteClient) GetAllSourceURLs(ctx context.Context) (map[string]bool, error) {
	return c.records().sourceURLs(ctx)
}

func (c *SQLiteClient) records() sqlRecords {
	return sqlRecords{db: c.db, dialect: DialectSQLite}
}
