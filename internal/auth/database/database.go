package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/victorgomez09/healthflow/internal/auth/models"
)

// TokenKey is the single key under which the raw bearer token is persisted.
const TokenKey = "auth_token"

// Schema for the local client database: a key/value table holding the bearer token and
// the session audit trail.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,                -- Storage key (e.g. auth_token).
    value TEXT NOT NULL,                 -- Raw value.
    updated_at DATETIME NOT NULL         -- Last write timestamp.
);

CREATE TABLE IF NOT EXISTS session_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    action TEXT NOT NULL,                -- login, logout, bootstrap, renew.
    status TEXT NOT NULL,                -- success or failure.
    email TEXT NOT NULL DEFAULT '',      -- Account involved, when known.
    details TEXT,                        -- Error message or extra context.
    created_at DATETIME NOT NULL         -- Timestamp when the transition happened.
);

CREATE INDEX IF NOT EXISTS idx_session_events_created_at ON session_events(created_at);
`

// TokenStore is durable storage for the bearer token. Absence of a token means the next
// bootstrap starts anonymous.
type TokenStore interface {
	// LoadToken returns the stored token, or "" when none is stored.
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// EventLog records session transitions.
type EventLog interface {
	RecordEvent(event *models.SessionEvent) error
	ListEvents(limit int) ([]models.SessionEvent, error)
}

// Store is the combined storage surface used by the session store.
type Store interface {
	TokenStore
	EventLog
	Close() error
}

type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB initializes a new SQLiteDB instance.
// - Ensures the connection is valid.
// - Ensures schema is created.
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open token database %s: %w", dbPath, err)
	}

	// a single connection serializes writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// LoadToken retrieves the persisted bearer token.
func (s *SQLiteDB) LoadToken() (string, error) {
	var token string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, TokenKey).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// SaveToken upserts the bearer token. An empty token clears the entry.
func (s *SQLiteDB) SaveToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}
	_, err := s.db.Exec(`
        INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
    `, TokenKey, token, time.Now())
	return err
}

// ClearToken removes the entry entirely rather than storing an empty value.
func (s *SQLiteDB) ClearToken() error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, TokenKey)
	return err
}

// RecordEvent inserts a new row into session_events.
func (s *SQLiteDB) RecordEvent(event *models.SessionEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`
        INSERT INTO session_events (action, status, email, details, created_at)
        VALUES (?, ?, ?, ?, ?)
    `, event.Action, event.Status, event.Email, event.Details, event.CreatedAt)
	if err != nil {
		return err
	}
	event.ID, _ = res.LastInsertId()
	return nil
}

// ListEvents returns the most recent events first. limit <= 0 returns everything.
func (s *SQLiteDB) ListEvents(limit int) ([]models.SessionEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
        SELECT id, action, status, email, details, created_at
        FROM session_events
        ORDER BY created_at DESC, id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.SessionEvent
	for rows.Next() {
		var (
			ev      models.SessionEvent
			details sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Action, &ev.Status, &ev.Email, &details, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Details = details.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CleanupEvents removes events older than the retention window.
func (s *SQLiteDB) CleanupEvents(retention time.Duration) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM session_events WHERE created_at < ?`, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
