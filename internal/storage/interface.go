package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/observe"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrLastReminder is returned when deleting the only reminder left on a vessel.
	ErrLastReminder = errors.New("unable to delete the last reminder of a vessel")
)

// Entity names the kind of data a change touched.
type Entity string

const (
	EntityVessels   Entity = "vessels"
	EntityReminders Entity = "reminders"
	EntitySettings  Entity = "settings"
	// EntityUnknown is reported by watchers that cannot tell what changed.
	EntityUnknown Entity = "*"
)

// Change is published after a write commits.
type Change struct {
	Entity Entity
}

// Touches reports whether the change may affect the given entity.
func (c Change) Touches(e Entity) bool {
	return c.Entity == e || c.Entity == EntityUnknown
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Vessels. A vessel is always created together with its first reminder.
	AddVessel(v models.Vessel, first models.Reminder) error
	GetVessel(id string) (models.Vessel, error)
	GetAllVessels() ([]models.Vessel, error)
	UpdateVessel(models.Vessel) error
	DeleteVessel(id string) error

	// Reminders
	AddReminder(models.Reminder) error
	GetReminder(id string) (models.Reminder, error)
	// GetAllReminders returns every reminder ordered by next perform date,
	// never performed first, ties broken by id.
	GetAllReminders() ([]models.Reminder, error)
	UpdateReminder(models.Reminder) error
	DeleteReminder(id string) error
	AppendPerform(ids []string, at time.Time) error

	// Notification center state
	AddNotification(models.Notification) error
	GetNotifications() ([]models.Notification, error)
	MarkNotificationDelivered(id string, at time.Time) error
	ClearNotifications() error
	GetBadge() (int, error)
	SetBadge(int) error

	// Change feed. OnChange fires for writes made through this provider,
	// Watch also reports writes made by other processes.
	OnChange(func(Change)) observe.Token
	Watch(ctx context.Context) (<-chan Change, error)

	// Utils
	GetConfigPath() string
}
