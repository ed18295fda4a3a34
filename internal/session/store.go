// Package session persists the single local account and the active
// session marker in SQLite. It is the sole source of truth for "is a user
// logged in".
//
// The store deliberately mirrors the one-slot scheme of the web client it
// replaces: at most one credential record exists (signing up overwrites
// it), logging out removes only the active-session marker, and the
// password is stored as entered. This is a local convenience gate, not a
// security boundary; do not put anything sensitive behind it.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrInvalidCredentials is returned by LogIn when the submitted email and
// password do not exactly match the stored record.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports the signup fields that were left empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Store is the SQLite-backed session and credential store. All operations
// are atomic per call.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (creating if needed) the session database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// initialize creates the two single-row tables. The fixed primary key
// enforces the one-slot invariant.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credential (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS active_session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		username TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SignUp stores the account, replacing any previous one. It does not
// activate a session; the caller still has to log in. When fields are
// empty nothing is written and the error names every missing field.
func (s *Store) SignUp(name, email, password string) error {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO credential (id, name, email, password, updated_at)
		 VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		 name = excluded.name,
		 email = excluded.email,
		 password = excluded.password,
		 updated_at = CURRENT_TIMESTAMP`,
		name, email, password,
	)
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// LogIn activates a session when email and password match the stored
// record exactly (case-sensitive, no trimming) and returns the display
// name. Any mismatch, including an empty store, is ErrInvalidCredentials.
func (s *Store) LogIn(email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name, storedEmail, storedPassword string
	err := s.db.QueryRow(
		"SELECT name, email, password FROM credential WHERE id = 1",
	).Scan(&name, &storedEmail, &storedPassword)
	if err == sql.ErrNoRows {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	if storedEmail != email || storedPassword != password {
		return "", ErrInvalidCredentials
	}

	_, err = s.db.Exec(
		`INSERT INTO active_session (id, username, created_at)
		 VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		 username = excluded.username,
		 created_at = CURRENT_TIMESTAMP`,
		name,
	)
	if err != nil {
		return "", fmt.Errorf("failed to activate session: %w", err)
	}
	return name, nil
}

// LogOut removes the active-session marker. The credential record stays,
// so logging back in with the same account works immediately.
func (s *Store) LogOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM active_session WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Current returns the active display name, if any. It is the read-only
// probe the workflow gate uses.
func (s *Store) Current() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var username string
	err := s.db.QueryRow("SELECT username FROM active_session WHERE id = 1").Scan(&username)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	return username, true, nil
}
