// Package memory persists the conversation log and the user's key/value facts
// in a local SQLite database.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	ID        int64
	Session   string
	Role      Role
	Content   string
	Timestamp time.Time
}

type Store struct {
	db      *sql.DB
	session string

	mu     sync.Mutex
	lastTS int64
	now    func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session    TEXT    NOT NULL,
	role       TEXT    NOT NULL,
	content    TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_created_at ON turns(created_at);

CREATE TABLE IF NOT EXISTS facts (
	key        TEXT PRIMARY KEY,
	value      TEXT    NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Open opens (creating if needed) the database at path. Every turn appended
// through the returned store carries a fresh session id.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection keeps writes ordered
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Store{
		db:      db,
		session: uuid.NewString(),
		now:     time.Now,
	}

	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_at), 0) FROM turns`).Scan(&s.lastTS); err != nil {
		db.Close()
		return nil, fmt.Errorf("read last timestamp: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Session() string {
	return s.session
}

// AppendTurn adds one entry to the log. Timestamps never go backwards, even if
// the wall clock does.
func (s *Store) AppendTurn(ctx context.Context, role Role, content string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixNano()
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (session, role, content, created_at) VALUES (?, ?, ?, ?)`,
		s.session, string(role), content, ts)
	if err != nil {
		return Turn{}, fmt.Errorf("insert turn: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Turn{}, fmt.Errorf("turn id: %w", err)
	}
	s.lastTS = ts

	return Turn{
		ID:        id,
		Session:   s.session,
		Role:      role,
		Content:   content,
		Timestamp: time.Unix(0, ts),
	}, nil
}

// Recent returns the last limit turns, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, role, content, created_at FROM turns ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var (
			t    Turn
			role string
			ts   int64
		)
		if err := rows.Scan(&t.ID, &t.Session, &role, &t.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Role = Role(role)
		t.Timestamp = time.Unix(0, ts)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetFact stores value under key, replacing any previous value.
func (s *Store) SetFact(ctx context.Context, key, value string) error {
	key = normalizeKey(key)
	if key == "" {
		return errors.New("empty fact key")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facts (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("upsert fact %q: %w", key, err)
	}
	return nil
}

// Fact returns the value for key and whether it exists.
func (s *Store) Fact(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM facts WHERE key = ?`, normalizeKey(key)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select fact: %w", err)
	}
	return v, true, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}
