// Package usage records per-exchange token consumption in a SQLite
// journal, so cost can be inspected across sessions and restarts.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/undergrid/recall/internal/provider"
)

// Entry is one journal row: the service-reported usage of a single
// completion call.
type Entry struct {
	ID               int64
	Kind             string // "exchange" or "compaction"
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CreatedAt        time.Time
}

// Entry kinds.
const (
	KindExchange   = "exchange"
	KindCompaction = "compaction"
)

// Totals aggregates the journal.
type Totals struct {
	Exchanges   int64
	Compactions int64
	TotalTokens int64
}

// Journal is a SQLite-backed usage log. Safe for use from a single
// process; SQLite serialises writes behind a single connection.
type Journal struct {
	db *sql.DB
}

// NewJournal wraps an open database. Use Open to create one from a
// file path.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Record appends one usage row.
func (j *Journal) Record(ctx context.Context, kind string, u provider.TokenUsage) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO usage_log (kind, prompt_tokens, completion_tokens, total_tokens, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		kind, u.PromptTokens, u.CompletionTokens, u.TotalTokens,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("usage: record %s: %w", kind, err)
	}
	return nil
}

// Totals returns aggregate counts over the whole journal.
func (j *Journal) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := j.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN kind = ? THEN 1 END),
			COUNT(CASE WHEN kind = ? THEN 1 END),
			COALESCE(SUM(total_tokens), 0)
		FROM usage_log`,
		KindExchange, KindCompaction,
	).Scan(&t.Exchanges, &t.Compactions, &t.TotalTokens)
	if err != nil {
		return Totals{}, fmt.Errorf("usage: totals: %w", err)
	}
	return t, nil
}

// Recent returns the n most recent entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, prompt_tokens, completion_tokens, total_tokens, created_at
		FROM usage_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("usage: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.PromptTokens, &e.CompletionTokens, &e.TotalTokens, &createdAt); err != nil {
			return nil, fmt.Errorf("usage: scan: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usage: iterate: %w", err)
	}
	return entries, nil
}
