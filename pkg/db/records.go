package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"play-extract/pkg/domain"
)

// ErrNotConnected is returned by clients used before Connect succeeded
var ErrNotConnected = errors.New("database not connected")

var recordColumns = []string{
	"name", "source_url", "strategy", "inline_votes", "block_votes",
	"trim_start", "trim_end", "speaker_count", "line_count",
	"transcript", "run_id", "extracted_at",
}

// recordRow is the column form of a PlayRecord shared by all SQL sinks
type recordRow struct {
	Name         string   `json:"name"`
	SourceURL    string   `json:"source_url"`
	Strategy     string   `json:"strategy"`
	InlineVotes  int      `json:"inline_votes"`
	BlockVotes   int      `json:"block_votes"`
	TrimStart    int      `json:"trim_start"`
	TrimEnd      int      `json:"trim_end"`
	SpeakerCount int      `json:"speaker_count"`
	LineCount    int      `json:"line_count"`
	Transcript   jsonText `json:"transcript"`
	RunID        string   `json:"run_id"`
	ExtractedAt  string   `json:"extracted_at"`
}

// jsonText is transcript JSON that marshals as an embedded object
type jsonText string

func (j jsonText) MarshalJSON() ([]byte, error) {
	if j == "" {
		return []byte("{}"), nil
	}
	return []byte(j), nil
}

func newRecordRow(record *domain.PlayRecord) (recordRow, error) {
	if record == nil {
		return recordRow{}, errors.New("record is nil")
	}
	if record.Name == "" {
		return recordRow{}, errors.New("record name is empty")
	}

	transcript, err := record.Transcript.MarshalJSON()
	if err != nil {
		return recordRow{}, fmt.Errorf("encode transcript: %w", err)
	}

	extractedAt := record.ExtractedAt
	if extractedAt.IsZero() {
		extractedAt = time.Now()
	}

	return recordRow{
		Name:         record.Name,
		SourceURL:    record.SourceURL,
		Strategy:     string(record.Strategy),
		InlineVotes:  record.InlineVotes,
		BlockVotes:   record.BlockVotes,
		TrimStart:    record.TrimStart,
		TrimEnd:      record.TrimEnd,
		SpeakerCount: record.SpeakerCount(),
		LineCount:    record.LineCount(),
		Transcript:   jsonText(transcript),
		RunID:        record.RunID,
		ExtractedAt:  extractedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func (r recordRow) args() []any {
	return []any{
		r.Name, r.SourceURL, r.Strategy, r.InlineVotes, r.BlockVotes,
		r.TrimStart, r.TrimEnd, r.SpeakerCount, r.LineCount,
		string(r.Transcript), r.RunID, r.ExtractedAt,
	}
}

// upsertQuery builds the insert-or-replace statement for a dialect
func upsertQuery(dialect string) string {
	placeholders := make([]string, len(recordColumns))
	updates := make([]string, 0, len(recordColumns)-1)
	for i, col := range recordColumns {
		placeholders[i] = placeholder(dialect, i+1)
		if col != "name" {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
		}
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (name) DO UPDATE SET %s",
		TableName,
		strings.Join(recordColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "))
}

func placeholder(dialect string, n int) string {
	if dialect == DialectPostgres {
		return fmt.Sprintf("$%d::%s", n, postgresCast(recordColumns[n-1]))
	}
	return "?"
}

// postgresCast types text parameters for JSON and timestamp columns
func postgresCast(column string) string {
	switch column {
	case "transcript":
		return "json"
	case "extracted_at":
		return "timestamptz"
	case "inline_votes", "block_votes", "trim_start", "trim_end", "speaker_count", "line_count":
		return "integer"
	default:
		return "text"
	}
}

// sqlRecords implements record persistence over any database/sql handle
type sqlRecords struct {
	db      *sql.DB
	dialect string
}

func (s sqlRecords) save(ctx context.Context, record *domain.PlayRecord) error {
	if s.db == nil {
		return ErrNotConnected
	}
	row, err := newRecordRow(record)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertQuery(s.dialect), row.args()...); err != nil {
		return fmt.Errorf("upsert %s: %w", record.Name, err)
	}
	return nil
}

func (s sqlRecords) sourceURLs(ctx context.Context) (map[string]bool, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source_url FROM "+TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query source URLs: %w", err)
	}
	defer rows.Close()

	urlSet := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan source URL: %w", err)
		}
		if u != "" {
			urlSet[u] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return urlSet, nil
}

// tunePool applies the optional pool tuning shared by the Postgres clients
func tunePool(db *sql.DB, maxOpen, maxIdle int, maxIdleTime, maxLife time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
	if maxLife > 0 {
		db.SetConnMaxLifetime(maxLife)
	}
}
