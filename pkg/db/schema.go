package db

import (
	"database/sql"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

// Dialects understood by sql-migrate
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// TableName is the table holding play records in SQL sinks
const TableName = "play_transcripts"

// migrations returns the schema for a dialect. The transcript column keeps the
// JSON text as written so speaker order survives (no JSONB on Postgres).
func migrations(dialect string) *migrate.MemoryMigrationSource {
	timestamp := "TIMESTAMPTZ"
	transcript := "JSON"
	if dialect == DialectSQLite {
		timestamp = "TEXT"
		transcript = "TEXT"
	}

	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "1_create_play_transcripts",
				Up: []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	source_url TEXT NOT NULL,
	strategy TEXT NOT NULL,
	inline_votes INTEGER NOT NULL DEFAULT 0,
	block_votes INTEGER NOT NULL DEFAULT 0,
	trim_start INTEGER NOT NULL DEFAULT 0,
	trim_end INTEGER NOT NULL DEFAULT 0,
	speaker_count INTEGER NOT NULL DEFAULT 0,
	line_count INTEGER NOT NULL DEFAULT 0,
	transcript %s NOT NULL,
	run_id TEXT NOT NULL DEFAULT '',
	extracted_at %s NOT NULL
)`, TableName, transcript, timestamp)},
				Down: []string{"DROP TABLE IF EXISTS " + TableName},
			},
			{
				Id:   "2_index_play_transcripts_source_url",
				Up:   []string{fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_source_url ON %s (source_url)", TableName, TableName)},
				Down: []string{fmt.Sprintf("DROP INDEX IF EXISTS idx_%s_source_url", TableName)},
			},
		},
	}
}

// ApplyMigrations brings the schema up to date and returns the number of migrations applied
func ApplyMigrations(db *sql.DB, dialect string) (int, error) {
	n, err := migrate.Exec(db, dialect, migrations(dialect), migrate.Up)
	if err != nil {
		return 0, fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	return n, nil
}
