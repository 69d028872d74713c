// Package journal keeps an append-only SQLite record of every applied
// transition and manual override. It exists for observability; a journal
// write failure never rolls back a transition that already applied.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one journal row
type Entry struct {
	ID        string
	TaskID    string
	FromState string
	ToState   string
	Workflow  string
	Via       string
	Outcome   string // "applied" or "override"
	Reasons   []string
	Operator  string
	CreatedAt time.Time
}

// Store manages the SQLite journal database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the journal database at dbPath
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of failing
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends one journal entry. ID and CreatedAt are filled in when
// the caller leaves them zero.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transitions (id, task_id, from_state, to_state, workflow, via, outcome, reasons, operator, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TaskID, e.FromState, e.ToState, e.Workflow, e.Via, e.Outcome,
		strings.Join(e.Reasons, "; "), e.Operator, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

// ForTask returns the journal entries for a task, oldest first
func (s *Store) ForTask(ctx context.Context, taskID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, from_state, to_state, workflow, via, outcome, reasons, operator, created_at
		FROM transitions WHERE task_id = ? ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var reasons string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.FromState, &e.ToState, &e.Workflow,
			&e.Via, &e.Outcome, &reasons, &e.Operator, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if reasons != "" {
			e.Reasons = strings.Split(reasons, "; ")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
