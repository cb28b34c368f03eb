// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session keeps research sessions in a local SQLite database so
// that research, followup, and export can run as separate invocations.
// Only raw response text and citation lists are stored; formatted
// documents are derived again whenever a session is read.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// ErrNotFound is returned when no session matches an ID or prefix.
var ErrNotFound = errors.New("session not found")

// ErrAmbiguous is returned when an ID prefix matches several sessions.
var ErrAmbiguous = errors.New("session ID prefix is ambiguous")

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

const defaultHistoryLimit = 20

// DefaultPath returns ~/.local/state/reverse-researcher/sessions.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".reverse-researcher", "sessions.db")
	}
	return filepath.Join(home, ".local", "state", "reverse-researcher", "sessions.db")
}

// Store is the session database.
type Store struct {
	db           *sql.DB
	historyLimit int
}

// Open opens or creates the session database at cfg.DBPath (DefaultPath
// when empty) and creates the schema if it does not exist.
func Open(cfg types.SessionConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	s := &Store{db: db, historyLimit: limit}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			conclusion TEXT NOT NULL,
			angle TEXT NOT NULL,
			created_at TEXT NOT NULL,
			question TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
		`CREATE TABLE IF NOT EXISTS findings (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			stance TEXT NOT NULL,
			prompt TEXT NOT NULL,
			text TEXT NOT NULL,
			citations TEXT NOT NULL,
			sources TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (session_id, stance)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save writes the session and its findings, replacing any stored version.
// A session without an ID is given a new one.
func (s *Store) Save(ctx context.Context, sess *types.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, conclusion, angle, created_at, question)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			conclusion=excluded.conclusion, angle=excluded.angle,
			created_at=excluded.created_at, question=excluded.question`,
		sess.ID, sess.Conclusion, string(sess.Angle), formatTime(sess.CreatedAt), sess.Question,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("deleting old findings: %w", err)
	}
	for _, f := range []*types.Finding{sess.Support, sess.Oppose, sess.FollowUp} {
		if f == nil {
			continue
		}
		if err := putFinding(ctx, tx, sess.ID, f); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetFollowUp records the follow-up question and answer for session id,
// replacing any previous follow-up.
func (s *Store) SetFollowUp(ctx context.Context, id, question string, f *types.Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET question = ? WHERE id = ?`, question, id)
	if err != nil {
		return fmt.Errorf("updating question: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM findings WHERE session_id = ? AND stance = ?`, id, string(types.StanceFollowUp),
	); err != nil {
		return fmt.Errorf("deleting old follow-up: %w", err)
	}
	if f != nil {
		ff := *f
		ff.Stance = types.StanceFollowUp
		if err := putFinding(ctx, tx, id, &ff); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func putFinding(ctx context.Context, tx *sql.Tx, sessionID string, f *types.Finding) error {
	citationsJSON, err := json.Marshal(nonNil(f.Response.Citations))
	if err != nil {
		return fmt.Errorf("encoding citations: %w", err)
	}
	sourcesJSON, err := json.Marshal(f.Response.Sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO findings (session_id, stance, prompt, text, citations, sources, model, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, string(f.Stance), f.Prompt, f.Response.Text,
		string(citationsJSON), string(sourcesJSON), f.Response.Model, formatTime(f.FetchedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting %s finding: %w", f.Stance, err)
	}
	return nil
}

// Latest returns the most recently created session.
func (s *Store) Latest(ctx context.Context) (types.Session, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, ErrNotFound
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("querying latest session: %w", err)
	}
	return s.load(ctx, id)
}

// Get returns the session whose ID is id or starts with id.
func (s *Store) Get(ctx context.Context, id string) (types.Session, error) {
	if id == "" {
		return types.Session{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE substr(id, 1, length(?)) = ? LIMIT 2`, id, id)
	if err != nil {
		return types.Session{}, fmt.Errorf("querying session %s: %w", id, err)
	}
	var ids []string
	for rows.Next() {
		var got string
		if err := rows.Scan(&got); err != nil {
			rows.Close()
			return types.Session{}, fmt.Errorf("scanning session ID: %w", err)
		}
		ids = append(ids, got)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.Session{}, fmt.Errorf("iterating sessions: %w", err)
	}

	switch len(ids) {
	case 0:
		return types.Session{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	case 1:
		return s.load(ctx, ids[0])
	default:
		return types.Session{}, fmt.Errorf("%s: %w", id, ErrAmbiguous)
	}
}

func (s *Store) load(ctx context.Context, id string) (types.Session, error) {
	var (
		sess      types.Session
		angle     string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, conclusion, angle, created_at, question FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Conclusion, &angle, &createdAt, &sess.Question)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("loading session %s: %w", id, err)
	}
	sess.Angle = types.Angle(angle)
	sess.CreatedAt = parseTime(createdAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT stance, prompt, text, citations, sources, model, fetched_at
		 FROM findings WHERE session_id = ?`, id)
	if err != nil {
		return types.Session{}, fmt.Errorf("loading findings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f                                   types.Finding
			stance, citations, sources, fetched string
		)
		if err := rows.Scan(&stance, &f.Prompt, &f.Response.Text, &citations, &sources,
			&f.Response.Model, &fetched); err != nil {
			return types.Session{}, fmt.Errorf("scanning finding: %w", err)
		}
		f.Stance = types.Stance(stance)
		f.FetchedAt = parseTime(fetched)
		if err := json.Unmarshal([]byte(citations), &f.Response.Citations); err != nil {
			return types.Session{}, fmt.Errorf("decoding %s citations: %w", stance, err)
		}
		if err := json.Unmarshal([]byte(sources), &f.Response.Sources); err != nil {
			return types.Session{}, fmt.Errorf("decoding %s sources: %w", stance, err)
		}
		sess.SetFinding(&f)
	}
	if err := rows.Err(); err != nil {
		return types.Session{}, fmt.Errorf("iterating findings: %w", err)
	}
	return sess, nil
}

// Summary is one row of the session history.
type Summary struct {
	ID         string         `json:"id" yaml:"id"`
	Conclusion string         `json:"conclusion" yaml:"conclusion"`
	Angle      types.Angle    `json:"angle" yaml:"angle"`
	CreatedAt  time.Time      `json:"created_at" yaml:"created_at"`
	Question   string         `json:"question,omitempty" yaml:"question,omitempty"`
	Stances    []types.Stance `json:"stances" yaml:"stances"`
}

// List returns up to limit sessions, newest first. A limit of zero or less
// uses the configured history limit.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.conclusion, s.angle, s.created_at, s.question,
			COALESCE((SELECT group_concat(f.stance) FROM findings f WHERE f.session_id = s.id), '')
		 FROM sessions s
		 ORDER BY s.created_at DESC, s.rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum                       Summary
			angle, createdAt, stances string
		)
		if err := rows.Scan(&sum.ID, &sum.Conclusion, &angle, &createdAt, &sum.Question, &stances); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sum.Angle = types.Angle(angle)
		sum.CreatedAt = parseTime(createdAt)
		sum.Stances = splitStances(stances)
		out = append(out, sum)
	}
	return out, rows.Err()
}

var stanceRank = map[types.Stance]int{
	types.StanceSupport:  0,
	types.StanceOppose:   1,
	types.StanceFollowUp: 2,
}

// splitStances parses a group_concat list into page order.
func splitStances(s string) []types.Stance {
	if s == "" {
		return nil
	}
	var out []types.Stance
	for _, part := range strings.Split(s, ",") {
		out = append(out, types.Stance(part))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return stanceRank[out[i]] < stanceRank[out[j]]
	})
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
