// Package ledger persists per-user per-day session costs to a JSON file.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ErrCorrupt indicates the ledger file exists but is not valid JSON.
// The file is left untouched so no data is lost.
var ErrCorrupt = errors.New("ledger: corrupt ledger file")

// DateFormat is the calendar-day key format used in the ledger.
const DateFormat = "2006-01-02"

// SessionRecord is one finished chat session. Immutable once written.
type SessionRecord struct {
	SessionID string  `json:"session_id"`
	Cost      float64 `json:"cost"`
	Messages  int     `json:"messages"`
	Timestamp string  `json:"timestamp"`
}

// DailyAggregate accumulates the sessions of one user on one day.
type DailyAggregate struct {
	Sessions      []SessionRecord `json:"sessions"`
	TotalCost     float64         `json:"total_cost"`
	TotalMessages int             `json:"total_messages"`
}

// Ledger mirrors the on-disk cost file in memory and rewrites it after every
// mutation. A single writer is assumed; concurrent processes race and the
// last write wins.
type Ledger struct {
	path  string
	users map[string]map[string]*DailyAggregate
	now   func() time.Time
}

// Open loads the ledger at path, starting empty if the file does not exist.
// Returns an error wrapping ErrCorrupt if the file exists but cannot be
// parsed; the caller must not proceed, so the broken file is never
// overwritten with empty state.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		path:  path,
		users: make(map[string]map[string]*DailyAggregate),
		now:   time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	if err := json.Unmarshal(data, &l.users); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	return l, nil
}

// AddSession appends a session record under (userID, today) and persists the
// whole ledger synchronously.
func (l *Ledger) AddSession(sessionID, userID string, cost float64, messages int) error {
	now := l.now()
	date := now.Format(DateFormat)

	days, ok := l.users[userID]
	if !ok {
		days = make(map[string]*DailyAggregate)
		l.users[userID] = days
	}

	agg, ok := days[date]
	if !ok {
		agg = &DailyAggregate{}
		days[date] = agg
	}

	agg.Sessions = append(agg.Sessions, SessionRecord{
		SessionID: sessionID,
		Cost:      cost,
		Messages:  messages,
		Timestamp: now.Format(time.RFC3339),
	})
	agg.TotalCost += cost
	agg.TotalMessages += messages

	return l.save()
}

// DailyCost returns the user's total cost for the given date
// (today when date is empty). Unknown keys cost zero.
func (l *Ledger) DailyCost(userID, date string) float64 {
	if date == "" {
		date = l.now().Format(DateFormat)
	}
	if agg, ok := l.users[userID][date]; ok {
		return agg.TotalCost
	}
	return 0
}

// Day returns the aggregate for (userID, date), or nil if none exists.
func (l *Ledger) Day(userID, date string) *DailyAggregate {
	if date == "" {
		date = l.now().Format(DateFormat)
	}
	return l.users[userID][date]
}

// Days returns the dates with recorded activity for a user, sorted ascending.
func (l *Ledger) Days(userID string) []string {
	days := make([]string, 0, len(l.users[userID]))
	for date := range l.users[userID] {
		days = append(days, date)
	}
	sort.Strings(days)
	return days
}

// Users returns all user ids present in the ledger, sorted.
func (l *Ledger) Users() []string {
	users := make([]string, 0, len(l.users))
	for u := range l.users {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// SetClock overrides the wall clock, for tests.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

func (l *Ledger) save() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating ledger dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(l.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	if err := os.WriteFile(l.path, data, 0o600); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}
