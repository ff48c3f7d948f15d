// Package sqlstore holds the queries shared by the sqlite and postgres
// providers. Queries are written with ? placeholders and rebound for
// drivers that need numbered parameters.
package sqlstore

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/waterme/internal/observe"
	"github.com/julianstephens/waterme/internal/storage"
)

// Store implements the data half of storage.Provider on top of database/sql.
type Store struct {
	db      *sql.DB
	dollar  bool
	changes observe.Notifier[storage.Change]
}

// New returns a store for ? placeholder drivers such as sqlite.
func New() *Store {
	return &Store{}
}

// NewDollar returns a store for drivers that use $1 placeholders, such as lib/pq.
func NewDollar() *Store {
	return &Store{dollar: true}
}

// Attach sets the database handle once the owning provider has opened it.
func (s *Store) Attach(db *sql.DB) {
	s.db = db
}

// DB returns the attached handle, or nil before Init or Load.
func (s *Store) DB() *sql.DB {
	return s.db
}

// OnChange registers fn to run after every committed write.
func (s *Store) OnChange(fn func(storage.Change)) observe.Token {
	return s.changes.Subscribe(fn)
}

// Emit publishes a change to OnChange subscribers. Providers use it to
// forward changes observed from other processes.
func (s *Store) Emit(c storage.Change) {
	s.changes.Emit(c)
}

func (s *Store) emit(e storage.Entity) {
	s.changes.Emit(storage.Change{Entity: e})
}

func (s *Store) q(query string) string {
	if !s.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) ready() error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// timeLayout is fixed width so text columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// parseTime accepts RFC 3339 text as written by formatTime. Timestamp
// columns read through lib/pq arrive in the same format.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
