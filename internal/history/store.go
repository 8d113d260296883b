// Package history keeps a SQLite record of the builds run by the serve loop.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/mdbear/internal/site"
)

// MemoryDSN keeps the history in memory for the lifetime of the process.
const MemoryDSN = ":memory:"

// Entry is one recorded build attempt.
type Entry struct {
	ID      int64        `json:"id"`
	BuildID string       `json:"build_id"`
	Trigger string       `json:"trigger"`
	Start   time.Time    `json:"start"`
	End     time.Time    `json:"end"`
	Outcome string       `json:"outcome"`
	Pages   int          `json:"pages"`
	Skipped int          `json:"skipped"`
	Error   string       `json:"error,omitempty"`
	Report  *site.Report `json:"-"`
}

// Duration is the wall time of the build.
func (e Entry) Duration() time.Duration { return e.End.Sub(e.Start) }

// Store persists build entries.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating when needed) the history database at dsn. An empty dsn
// is an in-memory database.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every pooled connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		trigger_source TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		error TEXT,
		report BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores the outcome of one build together with its full report.
func (s *Store) Record(ctx context.Context, trigger string, report *site.Report) (Entry, error) {
	if report == nil {
		return Entry{}, fmt.Errorf("record build: nil report")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, trigger_source, started_at, finished_at, outcome, pages, skipped, error, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.BuildID, trigger, report.Start.UnixNano(), report.End.UnixNano(), string(report.Outcome),
		report.PagesWritten, len(report.Skipped), report.Error, payload,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert build: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("insert build: %w", err)
	}
	return entryFrom(id, trigger, report), nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_source, report FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id      int64
			trigger string
			payload []byte
		)
		if err := rows.Scan(&id, &trigger, &payload); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		var report site.Report
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		entries = append(entries, entryFrom(id, trigger, &report))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of recorded builds.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count builds: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func entryFrom(id int64, trigger string, r *site.Report) Entry {
	return Entry{
		ID:      id,
		BuildID: r.BuildID,
		Trigger: trigger,
		Start:   r.Start,
		End:     r.End,
		Outcome: string(r.Outcome),
		Pages:   r.PagesWritten,
		Skipped: len(r.Skipped),
		Error:   r.Error,
		Report:  r,
	}
}
