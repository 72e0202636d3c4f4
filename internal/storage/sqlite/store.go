// Package sqlite persists completed analysis sessions for the history and
// review commands.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ErrNotFound is returned when a session id has no stored row.
var ErrNotFound = errors.New("sqlite: session not found")

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    depth TEXT NOT NULL,
    status TEXT NOT NULL,
    final_decision TEXT,
    error TEXT,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    results_json TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_symbol ON sessions(symbol);
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveSession upserts a session row. The full stage results are stored as
// JSON; the decision column is denormalized for listing.
func (s *Store) SaveSession(ctx context.Context, session *models.AnalysisSession) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	resultsJSON, err := json.Marshal(session.Results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	decision := ""
	if r := session.Results.Risk; r != nil && r.FinalDecision.OK() {
		if d, ok := r.FinalDecision.Content.(*models.DecisionContent); ok {
			decision = string(d.FinalDecision)
		}
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO sessions (id, symbol, depth, status, final_decision, error, started_at, finished_at, results_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status = excluded.status,
    final_decision = excluded.final_decision,
    error = excluded.error,
    finished_at = excluded.finished_at,
    results_json = excluded.results_json`,
		session.ID, session.Symbol, string(session.Depth), string(session.Status),
		decision, session.Error, session.StartTime, session.EndTime, string(resultsJSON))
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// SessionSummary is one row of the history listing.
type SessionSummary struct {
	ID            string
	Symbol        string
	Depth         string
	Status        string
	FinalDecision string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// ListSessions returns the most recent sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, symbol, depth, status, COALESCE(final_decision, ''), started_at, COALESCE(finished_at, started_at)
FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var row SessionSummary
		if err := rows.Scan(&row.ID, &row.Symbol, &row.Depth, &row.Status,
			&row.FinalDecision, &row.StartedAt, &row.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadSession restores one session with its full stage results.
func (s *Store) LoadSession(ctx context.Context, id string) (*models.AnalysisSession, error) {
	var (
		session     models.AnalysisSession
		depth       string
		status      string
		resultsJSON string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, symbol, depth, status, COALESCE(error, ''), started_at, COALESCE(finished_at, started_at), results_json
FROM sessions WHERE id = ?`, id).Scan(
		&session.ID, &session.Symbol, &depth, &status,
		&session.Error, &session.StartTime, &session.EndTime, &resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	session.Depth = models.Depth(depth)
	session.Status = models.SessionStatus(status)
	if err := json.Unmarshal([]byte(resultsJSON), &session.Results); err != nil {
		return nil, fmt.Errorf("decode results for %s: %w", id, err)
	}
	return &session, nil
}
