// Package history provides a SQLite-backed log of chat exchanges.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Exchange is one prompt/reply pair with its billed usage.
type Exchange struct {
	ID           int64
	SessionID    string
	UserID       string
	Model        string
	Prompt       string
	Reply        string
	InputTokens  int
	OutputTokens int
	Cost         float64
	CreatedAt    time.Time
}

// Store persists exchanges to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends an exchange.
func (s *Store) Save(e Exchange) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.Exec(`INSERT INTO exchanges
		(session_id, user_id, model, prompt, reply,
		 input_tokens, output_tokens, cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.UserID, e.Model, e.Prompt, e.Reply,
		e.InputTokens, e.OutputTokens, e.Cost, created.UTC().Format(time.RFC3339),
	)
	return err
}

// Recent returns the newest exchanges for a user, most recent first.
func (s *Store) Recent(userID string, limit int) ([]Exchange, error) {
	rows, err := s.db.Query(`SELECT
		id, session_id, user_id, model, prompt, reply,
		input_tokens, output_tokens, cost, created_at
		FROM exchanges WHERE user_id = ?
		ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []Exchange
	for rows.Next() {
		var e Exchange
		var created string
		err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.Model, &e.Prompt, &e.Reply,
			&e.InputTokens, &e.OutputTokens, &e.Cost, &created)
		if err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		result = append(result, e)
	}
	return result, rows.Err()
}

// SessionTotals sums tokens and cost across one session's exchanges.
func (s *Store) SessionTotals(sessionID string) (inputTokens, outputTokens int, cost float64, err error) {
	err = s.db.QueryRow(`SELECT
		COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0),
		COALESCE(SUM(cost), 0)
		FROM exchanges WHERE session_id = ?`, sessionID).
		Scan(&inputTokens, &outputTokens, &cost)
	return inputTokens, outputTokens, cost, err
}

// Count returns the number of stored exchanges.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM exchanges").Scan(&count)
	return count, err
}
