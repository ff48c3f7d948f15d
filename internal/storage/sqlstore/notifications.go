package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/storage"
)

func (s *Store) AddNotification(n models.Notification) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.Exec(s.q(`
		INSERT INTO notifications (id, fire_at, immediate, badge, body, sound, delivered_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), n.ID, formatTime(n.FireAt), n.Immediate, n.Badge, n.Body, n.Sound,
		formatTimePtr(n.DeliveredAt), formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *Store) GetNotifications() ([]models.Notification, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT id, fire_at, immediate, badge, body, sound, delivered_at, created_at
		FROM notifications ORDER BY fire_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var fireAt, createdAt string
		var delivered sql.NullString
		if err := rows.Scan(&n.ID, &fireAt, &n.Immediate, &n.Badge, &n.Body, &n.Sound, &delivered, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if n.FireAt, err = parseTime(fireAt); err != nil {
			return nil, fmt.Errorf("failed to parse fire_at: %w", err)
		}
		if n.DeliveredAt, err = parseTimePtr(delivered); err != nil {
			return nil, fmt.Errorf("failed to parse delivered_at: %w", err)
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkNotificationDelivered(id string, at time.Time) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.Exec(s.q("UPDATE notifications SET delivered_at = ? WHERE id = ?"), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s %w", id, storage.ErrNotFound)
	}
	return nil
}

// ClearNotifications removes pending and delivered notifications alike.
func (s *Store) ClearNotifications() error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM notifications"); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

func (s *Store) GetBadge() (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var v int
	if err := s.db.QueryRow("SELECT value FROM badge WHERE id = 1").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read badge: %w", err)
	}
	return v, nil
}

func (s *Store) SetBadge(v int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(s.q("UPDATE badge SET value = ? WHERE id = 1"), v); err != nil {
		return fmt.Errorf("failed to set badge: %w", err)
	}
	return nil
}
