package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/waterme/internal/models"
)

// Request is a notification handed to the delivery service.
type Request struct {
	ID        string
	FireAt    time.Time
	Immediate bool
	Badge     int
	Body      string
	Sound     bool
}

// RequestFromEntry converts a plan entry. Only future entries get a banner
// and a sound; immediate ones just carry the badge.
func RequestFromEntry(e PlanEntry) Request {
	return Request{
		ID:        "waterme-" + e.FireAt.UTC().Format("20060102T1504"),
		FireAt:    e.FireAt,
		Immediate: e.IsImmediate,
		Badge:     e.ItemCount,
		Body:      Body(e),
		Sound:     !e.IsImmediate,
	}
}

// Center is the notification delivery service.
type Center interface {
	// RemoveAll drops pending and delivered notifications.
	RemoveAll(ctx context.Context) error
	// Authorized reports whether the user allows notifications. A false
	// answer is a normal state, not an error.
	Authorized(ctx context.Context) (bool, error)
	Add(ctx context.Context, req Request) error
	SetBadge(ctx context.Context, n int) error
}

// CenterStore is the storage a LocalCenter keeps its queue in.
type CenterStore interface {
	GetSettings() (models.Settings, error)
	AddNotification(models.Notification) error
	ClearNotifications() error
	SetBadge(int) error
}

// LocalCenter queues requests in the store. A Deliverer later fires them.
type LocalCenter struct {
	store CenterStore
	now   func() time.Time
}

func NewLocalCenter(store CenterStore) *LocalCenter {
	return &LocalCenter{store: store, now: time.Now}
}

func (c *LocalCenter) RemoveAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.ClearNotifications()
}

func (c *LocalCenter) Authorized(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s, err := c.store.GetSettings()
	if err != nil {
		return false, fmt.Errorf("failed to read notification permission: %w", err)
	}
	return s.NotificationsEnabled, nil
}

func (c *LocalCenter) Add(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.AddNotification(models.Notification{
		ID:        req.ID,
		FireAt:    req.FireAt,
		Immediate: req.Immediate,
		Badge:     req.Badge,
		Body:      req.Body,
		Sound:     req.Sound,
		CreatedAt: c.now(),
	})
}

func (c *LocalCenter) SetBadge(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.SetBadge(n)
}
