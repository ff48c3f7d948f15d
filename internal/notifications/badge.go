package notifications

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/utils"
)

// BadgeCount is the number of reminders due today or earlier.
func BadgeCount(reminders []models.Reminder, now time.Time) int {
	endOfToday := utils.EndOfDay(now)
	n := 0
	for _, r := range reminders {
		due := r.DueDate(now).In(now.Location())
		if !utils.EndOfDay(due).After(endOfToday) {
			n++
		}
	}
	return n
}

// BadgeUpdater publishes the badge count. It shares the scheduler's worker
// so badge writes never interleave with a rebuild.
type BadgeUpdater struct {
	center   Center
	settings SettingsSource
	worker   *Worker
	guard    guard
	opts     schedulerOptions
	log      *log.Logger
}

func NewBadgeUpdater(center Center, settings SettingsSource, worker *Worker, opts ...SchedulerOption) *BadgeUpdater {
	return &BadgeUpdater{
		center:   center,
		settings: settings,
		worker:   worker,
		opts:     applyOptions(opts),
		log:      worker.log,
	}
}

func (b *BadgeUpdater) Perform(snapshot []models.Reminder) bool {
	return b.worker.submit("badge", &b.guard, b.job(snapshot))
}

// PerformWait is Perform that returns once the badge is written.
func (b *BadgeUpdater) PerformWait(snapshot []models.Reminder) bool {
	return b.worker.submitWait("badge", &b.guard, b.job(snapshot))
}

func (b *BadgeUpdater) job(snapshot []models.Reminder) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		now := localNow(loadSettings(b.settings, b.log), b.opts.now)
		count := BadgeCount(snapshot, now)
		if err := b.center.SetBadge(ctx, count); err != nil {
			return err
		}
		b.log.Debug("badge updated", "count", count)
		return nil
	}
}
