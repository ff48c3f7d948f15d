package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/notifier"
)

// DeliveryStore is where a LocalCenter left its queued notifications.
type DeliveryStore interface {
	GetNotifications() ([]models.Notification, error)
	MarkNotificationDelivered(id string, at time.Time) error
	SetBadge(int) error
}

// Deliverer fires queued notifications once they are due.
type Deliverer struct {
	store  DeliveryStore
	sender notifier.Sender
	worker *Worker
	opts   schedulerOptions
	log    *log.Logger
}

// NewDeliverer returns a deliverer. A nil sender still applies badges.
func NewDeliverer(store DeliveryStore, sender notifier.Sender, worker *Worker, opts ...SchedulerOption) *Deliverer {
	return &Deliverer{store: store, sender: sender, worker: worker, opts: applyOptions(opts), log: worker.log}
}

// Deliver fires everything that is due and returns how many notifications
// were consumed. When several are due at once, as after the machine slept
// for days, only the latest one shows a banner.
func (d *Deliverer) Deliver(ctx context.Context) (int, error) {
	var delivered int
	err := d.worker.do(ctx, "deliver", func(ctx context.Context) error {
		n, err := d.deliver(ctx)
		delivered = n
		return err
	})
	return delivered, err
}

func (d *Deliverer) deliver(ctx context.Context) (int, error) {
	now := d.opts.now()
	all, err := d.store.GetNotifications()
	if err != nil {
		return 0, fmt.Errorf("failed to read notifications: %w", err)
	}

	var due []models.Notification
	for _, n := range all {
		if n.IsDue(now) {
			due = append(due, n)
		}
	}
	if len(due) == 0 {
		return 0, nil
	}

	latest := due[0]
	for _, n := range due[1:] {
		if n.FireAt.After(latest.FireAt) {
			latest = n
		}
	}

	if err := d.store.SetBadge(latest.Badge); err != nil {
		d.log.Error("failed to set badge", "err", err)
	}
	if latest.Body != "" && d.sender != nil {
		msg := notifier.Message{
			Title: constants.AppName,
			Body:  latest.Body,
			Badge: latest.Badge,
			Sound: latest.Sound,
		}
		if err := d.sender.Send(ctx, msg); err != nil {
			d.log.Error("failed to deliver notification", "id", latest.ID, "err", err)
		}
	}

	for _, n := range due {
		if err := d.store.MarkNotificationDelivered(n.ID, now); err != nil {
			return 0, fmt.Errorf("failed to mark notification %s delivered: %w", n.ID, err)
		}
	}
	return len(due), nil
}

// Run delivers on every tick until ctx is done.
func (d *Deliverer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := d.Deliver(ctx); err != nil && ctx.Err() == nil {
			d.log.Error("delivery pass failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
