package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/billie-coop/roster/internal/probe"
)

// HistoryEntry is one recorded connectivity probe.
type HistoryEntry struct {
	ProviderID   string
	ProviderName string
	Valid        bool
	ErrorType    string
	Message      string
	Duration     time.Duration
	TestedAt     time.Time
}

// History records probe outcomes in SQLite so the save tab can show
// how a provider has been behaving, not just its latest answer.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the probe history database.
func OpenHistory(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=2000")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS probe_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider_id TEXT NOT NULL,
		provider_name TEXT NOT NULL,
		valid INTEGER NOT NULL,
		error_type TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		tested_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_probe_results_provider
		ON probe_results (provider_id, tested_at DESC);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &History{db: db}, nil
}

// Record stores one probe result.
func (h *History) Record(providerID, providerName string, res probe.Result) error {
	_, err := h.db.Exec(
		`INSERT INTO probe_results
		 (provider_id, provider_name, valid, error_type, message, duration_ms, tested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		providerID,
		providerName,
		res.Valid,
		string(res.Details.ErrorType),
		res.Message,
		res.Details.Duration.Milliseconds(),
		res.Details.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record probe result: %w", err)
	}
	return nil
}

// Recent returns the latest probes across all providers, newest first.
func (h *History) Recent(limit int) ([]HistoryEntry, error) {
	rows, err := h.db.Query(
		`SELECT provider_id, provider_name, valid, error_type, message, duration_ms, tested_at
		 FROM probe_results ORDER BY tested_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query probe history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e          HistoryEntry
			valid      int
			durationMs int64
			testedAt   int64
		)
		if err := rows.Scan(&e.ProviderID, &e.ProviderName, &valid, &e.ErrorType, &e.Message, &durationMs, &testedAt); err != nil {
			return nil, fmt.Errorf("scan probe history row: %w", err)
		}
		e.Valid = valid != 0
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.TestedAt = time.Unix(testedAt, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database.
func (h *History) Close() error {
	return h.db.Close()
}
