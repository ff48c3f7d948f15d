package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/storage"
)

func (s *Store) AddVessel(v models.Vessel, first models.Reminder) error {
	if err := v.Validate(); err != nil {
		return err
	}
	first.VesselID = v.ID
	if err := first.Validate(); err != nil {
		return err
	}

	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.q(`
			INSERT INTO vessels (id, display_name, icon_kind, icon_emoji, kind, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`), v.ID, v.DisplayName, string(v.Icon.Kind), v.Icon.Emoji, v.Kind, formatTime(v.CreatedAt)); err != nil {
			return fmt.Errorf("failed to insert vessel: %w", err)
		}
		return s.insertReminder(tx, first, 0)
	})
	if err != nil {
		return err
	}
	s.emit(storage.EntityVessels)
	return nil
}

func (s *Store) GetVessel(id string) (models.Vessel, error) {
	if err := s.ready(); err != nil {
		return models.Vessel{}, err
	}
	var v models.Vessel
	var iconKind, createdAt string
	err := s.db.QueryRow(s.q(`
		SELECT id, display_name, icon_kind, icon_emoji, kind, created_at
		FROM vessels WHERE id = ?
	`), id).Scan(&v.ID, &v.DisplayName, &iconKind, &v.Icon.Emoji, &v.Kind, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vessel{}, fmt.Errorf("vessel %s %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Vessel{}, fmt.Errorf("failed to get vessel: %w", err)
	}
	v.Icon.Kind = models.IconKind(iconKind)
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Vessel{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	rows, err := s.db.Query(s.q("SELECT id FROM reminders WHERE vessel_id = ? ORDER BY position, id"), id)
	if err != nil {
		return models.Vessel{}, fmt.Errorf("failed to query vessel reminders: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rid string
		if err := rows.Scan(&rid); err != nil {
			return models.Vessel{}, err
		}
		v.ReminderIDs = append(v.ReminderIDs, rid)
	}
	return v, rows.Err()
}

func (s *Store) GetAllVessels() ([]models.Vessel, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT id, display_name, icon_kind, icon_emoji, kind, created_at
		FROM vessels ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vessels: %w", err)
	}

	var vessels []models.Vessel
	index := map[string]int{}
	for rows.Next() {
		var v models.Vessel
		var iconKind, createdAt string
		if err := rows.Scan(&v.ID, &v.DisplayName, &iconKind, &v.Icon.Emoji, &v.Kind, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		v.Icon.Kind = models.IconKind(iconKind)
		if v.CreatedAt, err = parseTime(createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		index[v.ID] = len(vessels)
		vessels = append(vessels, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rrows, err := s.db.Query("SELECT vessel_id, id FROM reminders ORDER BY vessel_id, position, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query vessel reminders: %w", err)
	}
	defer rrows.Close()
	for rrows.Next() {
		var vid, rid string
		if err := rrows.Scan(&vid, &rid); err != nil {
			return nil, err
		}
		if i, ok := index[vid]; ok {
			vessels[i].ReminderIDs = append(vessels[i].ReminderIDs, rid)
		}
	}
	return vessels, rrows.Err()
}

func (s *Store) UpdateVessel(v models.Vessel) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.Exec(s.q(`
		UPDATE vessels SET display_name = ?, icon_kind = ?, icon_emoji = ?, kind = ?
		WHERE id = ?
	`), v.DisplayName, string(v.Icon.Kind), v.Icon.Emoji, v.Kind, v.ID)
	if err != nil {
		return fmt.Errorf("failed to update vessel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("vessel %s %w", v.ID, storage.ErrNotFound)
	}
	s.emit(storage.EntityVessels)
	return nil
}

// DeleteVessel removes the vessel together with its reminders and their history.
func (s *Store) DeleteVessel(id string) error {
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.q(`
			DELETE FROM perform_events
			WHERE reminder_id IN (SELECT id FROM reminders WHERE vessel_id = ?)
		`), id); err != nil {
			return fmt.Errorf("failed to delete perform history: %w", err)
		}
		if _, err := tx.Exec(s.q("DELETE FROM reminders WHERE vessel_id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete reminders: %w", err)
		}
		res, err := tx.Exec(s.q("DELETE FROM vessels WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("failed to delete vessel: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("vessel %s %w", id, storage.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(storage.EntityVessels)
	return nil
}
