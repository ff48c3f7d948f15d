package notifications

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/utils"
)

// SettingsSource supplies the user's notification preferences.
type SettingsSource interface {
	GetSettings() (models.Settings, error)
}

type SchedulerOption func(*schedulerOptions)

type schedulerOptions struct {
	now func() time.Time
	rng *rand.Rand
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SchedulerOption {
	return func(o *schedulerOptions) { o.now = now }
}

// WithRand fixes the source used to sample vessel names.
func WithRand(r *rand.Rand) SchedulerOption {
	return func(o *schedulerOptions) { o.rng = r }
}

func applyOptions(opts []SchedulerOption) schedulerOptions {
	o := schedulerOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Scheduler rebuilds the pending notifications from a reminder snapshot.
type Scheduler struct {
	center   Center
	settings SettingsSource
	names    VesselNamer
	worker   *Worker
	guard    guard
	opts     schedulerOptions
	log      *log.Logger
}

func NewScheduler(center Center, settings SettingsSource, names VesselNamer, worker *Worker, opts ...SchedulerOption) *Scheduler {
	return &Scheduler{
		center:   center,
		settings: settings,
		names:    names,
		worker:   worker,
		opts:     applyOptions(opts),
		log:      worker.log,
	}
}

// Perform queues a rebuild. It returns false, without doing anything, when
// a previous rebuild has not finished yet.
func (s *Scheduler) Perform(snapshot []models.Reminder) bool {
	return s.worker.submit("schedule", &s.guard, func(ctx context.Context) error {
		return s.run(ctx, snapshot)
	})
}

// PerformWait is Perform that returns once the rebuild has finished.
func (s *Scheduler) PerformWait(snapshot []models.Reminder) bool {
	return s.worker.submitWait("schedule", &s.guard, func(ctx context.Context) error {
		return s.run(ctx, snapshot)
	})
}

func (s *Scheduler) run(ctx context.Context, snapshot []models.Reminder) error {
	if err := s.center.RemoveAll(ctx); err != nil {
		s.log.Error("failed to remove notifications", "err", err)
	}
	if err := s.center.SetBadge(ctx, 0); err != nil {
		s.log.Error("failed to reset badge", "err", err)
	}

	if len(snapshot) == 0 {
		s.log.Debug("no reminders to schedule")
		return nil
	}

	ok, err := s.center.Authorized(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Info("notifications are turned off")
		return nil
	}

	settings := loadSettings(s.settings, s.log)
	now := localNow(settings, s.opts.now)
	plan := BuildPlan(snapshot, s.names, ConfigFromSettings(settings), now, s.opts.rng)
	if len(plan) == 0 {
		s.log.Debug("no notifications to schedule")
		return nil
	}

	added := 0
	for _, entry := range plan {
		if err := ctx.Err(); err != nil {
			s.log.Warn("stopped scheduling notifications", "added", added, "planned", len(plan), "err", err)
			return err
		}
		if err := s.center.Add(ctx, RequestFromEntry(entry)); err != nil {
			s.log.Error("failed to schedule notification", "fire_at", entry.FireAt, "err", err)
			continue
		}
		added++
	}
	s.log.Debug("scheduled notifications", "count", added, "planned", len(plan))
	return nil
}

func loadSettings(src SettingsSource, l *log.Logger) models.Settings {
	if src == nil {
		return models.DefaultSettings()
	}
	s, err := src.GetSettings()
	if err != nil {
		l.Warn("failed to read settings, using defaults", "err", err)
		return models.DefaultSettings()
	}
	models.ApplyDefaultSettings(&s)
	return s
}

// localNow returns now in the user's configured zone.
func localNow(s models.Settings, clock func() time.Time) time.Time {
	now := clock()
	if loc, err := utils.LoadLocation(s.Timezone); err == nil {
		return now.In(loc)
	}
	return now
}
