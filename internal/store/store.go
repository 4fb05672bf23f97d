// Package store is a local SQLite stand-in for the managed backend. It keeps
// the users and team_members tables the role classifier reads and is meant for
// development and tests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/pmos/internal/backend"
	"github.com/felixgeelhaar/pmos/internal/errors"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL DEFAULT '',
	full_name TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS team_members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	manager_id TEXT NOT NULL DEFAULT '',
	user_id TEXT,
	email TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_team_members_user_id ON team_members(user_id);
`

// Store implements role lookups over a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, path: path}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ManagerExists reports whether a users row with id = userID exists.
func (s *Store) ManagerExists(ctx context.Context, userID string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM users WHERE id = ? LIMIT 1`, userID)
}

// TeamMemberExists reports whether a team_members row links userID.
func (s *Store) TeamMemberExists(ctx context.Context, userID string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM team_members WHERE user_id = ? LIMIT 1`, userID)
}

func (s *Store) exists(ctx context.Context, query, arg string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&one)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("sqlite lookup: %w", err)
	}
	return true, nil
}

// Health pings the database.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AddManager inserts a users row. Adding an existing id is a no-op.
func (s *Store) AddManager(ctx context.Context, id, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, email)
	if err != nil {
		return fmt.Errorf("failed to add manager %s: %w", id, err)
	}
	return nil
}

// AddTeamMember links userID to managerID. An empty userID records a
// pending invitation that no identity resolves to yet.
func (s *Store) AddTeamMember(ctx context.Context, managerID, userID, email string) error {
	var uid any
	if userID != "" {
		uid = userID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_members (manager_id, user_id, email) VALUES (?, ?, ?)`, managerID, uid, email)
	if err != nil {
		return fmt.Errorf("failed to add team member %s: %w", email, err)
	}
	return nil
}

// RemoveTeamMember deletes every membership of userID.
func (s *Store) RemoveTeamMember(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM team_members WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to remove team member %s: %w", userID, err)
	}
	return nil
}

// RPC reports every procedure as missing; the local database has none.
// The cause has the shape the managed backend returns for an unknown function.
func (s *Store) RPC(ctx context.Context, fn string, args any) (json.RawMessage, error) {
	apiErr := &backend.APIError{
		Status:  404,
		Code:    "PGRST202",
		Message: fmt.Sprintf("Could not find the function public.%s without parameters in the schema cache", fn),
	}
	return nil, errors.Wrap(errors.ErrCodeBackendNotSupport, "the sqlite backend has no stored procedures", apiErr).
		WithSuggestion("Run recurring task generation against the managed backend (backend.driver: supabase)")
}
