package db

import (
	"context"
	"database/sql"

	"play-extract/pkg/domain"
)

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows SQLiteClient, PostgresClient and SupabaseClient to be used interchangeably.
type DBProvider interface {
	DB() *sql.DB
}

// RecordStore persists play records keyed by name
type RecordStore interface {
	Connect(ctx context.Context) error
	SaveRecord(ctx context.Context, record *domain.PlayRecord) (string, error)
	GetAllSourceURLs(ctx context.Context) (map[string]bool, error)
	Close() error
}
