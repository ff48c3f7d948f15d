package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/storage"
)

const reminderColumns = `id, vessel_id, kind, kind_location, kind_title, kind_description,
	interval_days, note, is_enabled, next_perform_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (models.Reminder, error) {
	var r models.Reminder
	var kind, createdAt string
	var next sql.NullString
	err := row.Scan(
		&r.ID, &r.VesselID, &kind, &r.Kind.Location, &r.Kind.Title, &r.Kind.Description,
		&r.IntervalDays, &r.Note, &r.IsEnabled, &next, &createdAt,
	)
	if err != nil {
		return models.Reminder{}, err
	}
	r.Kind.Type = models.KindType(kind)
	if r.NextPerformDate, err = parseTimePtr(next); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse next_perform_date: %w", err)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return r, nil
}

// SortReminders orders reminders by next perform date with never performed
// reminders first, breaking ties by id.
func SortReminders(reminders []models.Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i].NextPerformDate, reminders[j].NextPerformDate
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return reminders[i].ID < reminders[j].ID
	})
}

func (s *Store) insertReminder(tx *sql.Tx, r models.Reminder, position int) error {
	if len(r.Performed) > 0 {
		r.RecomputeNextPerformDate()
	}
	if _, err := tx.Exec(s.q(`
		INSERT INTO reminders (
			id, vessel_id, position, kind, kind_location, kind_title, kind_description,
			interval_days, note, is_enabled, next_perform_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		r.ID, r.VesselID, position, string(r.Kind.Type), r.Kind.Location, r.Kind.Title, r.Kind.Description,
		r.IntervalDays, r.Note, r.IsEnabled, formatTimePtr(r.NextPerformDate), formatTime(r.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	for _, e := range r.Performed {
		if _, err := tx.Exec(s.q("INSERT INTO perform_events (reminder_id, performed_at) VALUES (?, ?)"),
			r.ID, formatTime(e.Date)); err != nil {
			return fmt.Errorf("failed to insert perform event: %w", err)
		}
	}
	return nil
}

func (s *Store) AddReminder(r models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	err := s.withTx(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(s.q("SELECT COUNT(*) FROM vessels WHERE id = ?"), r.VesselID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up vessel: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("vessel %s %w", r.VesselID, storage.ErrNotFound)
		}
		var position int
		if err := tx.QueryRow(s.q("SELECT COALESCE(MAX(position), -1) + 1 FROM reminders WHERE vessel_id = ?"),
			r.VesselID).Scan(&position); err != nil {
			return fmt.Errorf("failed to compute reminder position: %w", err)
		}
		return s.insertReminder(tx, r, position)
	})
	if err != nil {
		return err
	}
	s.emit(storage.EntityReminders)
	return nil
}

func (s *Store) GetReminder(id string) (models.Reminder, error) {
	if err := s.ready(); err != nil {
		return models.Reminder{}, err
	}
	r, err := scanReminder(s.db.QueryRow(s.q("SELECT "+reminderColumns+" FROM reminders WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, fmt.Errorf("reminder %s %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to get reminder: %w", err)
	}

	rows, err := s.db.Query(s.q("SELECT performed_at FROM perform_events WHERE reminder_id = ? ORDER BY id"), id)
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to query perform history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var at string
		if err := rows.Scan(&at); err != nil {
			return models.Reminder{}, err
		}
		t, err := parseTime(at)
		if err != nil {
			return models.Reminder{}, fmt.Errorf("failed to parse performed_at: %w", err)
		}
		r.Performed = append(r.Performed, models.PerformEvent{Date: t})
	}
	return r, rows.Err()
}

func (s *Store) GetAllReminders() ([]models.Reminder, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query("SELECT " + reminderColumns + " FROM reminders")
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	var reminders []models.Reminder
	index := map[string]int{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		index[r.ID] = len(reminders)
		reminders = append(reminders, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	erows, err := s.db.Query("SELECT reminder_id, performed_at FROM perform_events ORDER BY reminder_id, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query perform history: %w", err)
	}
	defer erows.Close()
	for erows.Next() {
		var rid, at string
		if err := erows.Scan(&rid, &at); err != nil {
			return nil, err
		}
		i, ok := index[rid]
		if !ok {
			continue
		}
		t, err := parseTime(at)
		if err != nil {
			return nil, fmt.Errorf("failed to parse performed_at: %w", err)
		}
		reminders[i].Performed = append(reminders[i].Performed, models.PerformEvent{Date: t})
	}
	if err := erows.Err(); err != nil {
		return nil, err
	}

	SortReminders(reminders)
	return reminders, nil
}

// UpdateReminder saves the editable fields of r. The next perform date is
// rederived from the stored history so an interval change takes effect at once.
func (s *Store) UpdateReminder(r models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(s.q(`
			UPDATE reminders SET kind = ?, kind_location = ?, kind_title = ?, kind_description = ?,
				interval_days = ?, note = ?, is_enabled = ?
			WHERE id = ?
		`), string(r.Kind.Type), r.Kind.Location, r.Kind.Title, r.Kind.Description,
			r.IntervalDays, r.Note, r.IsEnabled, r.ID)
		if err != nil {
			return fmt.Errorf("failed to update reminder: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("reminder %s %w", r.ID, storage.ErrNotFound)
		}

		var last sql.NullString
		err = tx.QueryRow(s.q(`
			SELECT performed_at FROM perform_events WHERE reminder_id = ? ORDER BY id DESC LIMIT 1
		`), r.ID).Scan(&last)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read last perform: %w", err)
		}
		lastAt, err := parseTimePtr(last)
		if err != nil {
			return fmt.Errorf("failed to parse performed_at: %w", err)
		}
		if lastAt == nil {
			return nil
		}
		next := lastAt.AddDate(0, 0, r.IntervalDays)
		if _, err := tx.Exec(s.q("UPDATE reminders SET next_perform_date = ? WHERE id = ?"),
			formatTime(next), r.ID); err != nil {
			return fmt.Errorf("failed to update next perform date: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(storage.EntityReminders)
	return nil
}

// DeleteReminder removes a reminder unless it is the last one on its vessel.
func (s *Store) DeleteReminder(id string) error {
	err := s.withTx(func(tx *sql.Tx) error {
		var vesselID string
		err := tx.QueryRow(s.q("SELECT vessel_id FROM reminders WHERE id = ?"), id).Scan(&vesselID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reminder %s %w", id, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up reminder: %w", err)
		}

		var count int
		if err := tx.QueryRow(s.q("SELECT COUNT(*) FROM reminders WHERE vessel_id = ?"), vesselID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count reminders: %w", err)
		}
		if count <= 1 {
			return storage.ErrLastReminder
		}

		if _, err := tx.Exec(s.q("DELETE FROM perform_events WHERE reminder_id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete perform history: %w", err)
		}
		if _, err := tx.Exec(s.q("DELETE FROM reminders WHERE id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete reminder: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(storage.EntityReminders)
	return nil
}

// AppendPerform records a completion at the same instant for every id.
func (s *Store) AppendPerform(ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.withTx(func(tx *sql.Tx) error {
		for _, id := range ids {
			var interval int
			err := tx.QueryRow(s.q("SELECT interval_days FROM reminders WHERE id = ?"), id).Scan(&interval)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("reminder %s %w", id, storage.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("failed to look up reminder: %w", err)
			}
			if _, err := tx.Exec(s.q("INSERT INTO perform_events (reminder_id, performed_at) VALUES (?, ?)"),
				id, formatTime(at)); err != nil {
				return fmt.Errorf("failed to insert perform event: %w", err)
			}
			next := at.AddDate(0, 0, interval)
			if _, err := tx.Exec(s.q("UPDATE reminders SET next_perform_date = ? WHERE id = ?"),
				formatTime(next), id); err != nil {
				return fmt.Errorf("failed to update next perform date: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(storage.EntityReminders)
	return nil
}
