// Package daemon keeps scheduled notifications and the badge in step with
// the stored reminders, and optionally serves the HTTP API.
package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/waterme/internal/api"
	"github.com/julianstephens/waterme/internal/config"
	"github.com/julianstephens/waterme/internal/debounce"
	"github.com/julianstephens/waterme/internal/iconstore"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/notifications"
	"github.com/julianstephens/waterme/internal/notifier"
	"github.com/julianstephens/waterme/internal/observe"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/utils"
)

// resubscribeDelay is how long the daemon waits before reading the store
// again after the collection reported an error.
var resubscribeDelay = 5 * time.Second

type Daemon struct {
	store  storage.Provider
	cfg    *config.Config
	sender notifier.Sender
	now    func() time.Time
	log    *log.Logger

	col       *source.Collection
	worker    *notifications.Worker
	scheduler *notifications.Scheduler
	badge     *notifications.BadgeUpdater
	deliverer *notifications.Deliverer
	debouncer *debounce.Debouncer
	server    *api.Server
	icons     *iconstore.Store
	center    notifications.Center

	mu       sync.Mutex
	colTok   observe.Token
	settings models.Settings
}

type Option func(*Daemon)

func WithClock(now func() time.Time) Option {
	return func(d *Daemon) { d.now = now }
}

// WithCenter replaces the store backed notification center.
func WithCenter(c notifications.Center) Option {
	return func(d *Daemon) { d.center = c }
}

// New wires the daemon. sender may be nil, in which case queued
// notifications only update the badge.
func New(store storage.Provider, cfg *config.Config, sender notifier.Sender, opts ...Option) *Daemon {
	d := &Daemon{
		store:  store,
		cfg:    cfg,
		sender: sender,
		now:    time.Now,
		log:    logger.For("daemon"),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.col = source.New(store, source.WithLogger(logger.For("source")))
	d.worker = notifications.NewWorker(cfg.Daemon.RunTimeout, logger.For("notifications"))
	if d.center == nil {
		d.center = notifications.NewLocalCenter(store)
	}
	clock := notifications.WithClock(d.now)
	d.scheduler = notifications.NewScheduler(d.center, store, d.col, d.worker, clock)
	d.badge = notifications.NewBadgeUpdater(d.center, store, d.worker, clock)
	d.deliverer = notifications.NewDeliverer(store, sender, d.worker, clock)
	d.debouncer = debounce.New(cfg.Daemon.QuietPeriod, d.recompute)

	if cfg.API.Enabled {
		if cfg.API.IconDir != "" {
			d.icons = iconstore.New(cfg.API.IconDir)
		}
		d.server = api.New(store, d.col, d.icons, api.WithClock(d.now))
	}
	return d
}

// recompute runs on the debouncer and blocks until both jobs are done, so
// triggers arriving meanwhile collapse into one follow-up run. A job dropped
// because another run held its slot is retried the same way.
func (d *Daemon) recompute() {
	snapshot := d.col.Snapshot()
	scheduled := d.scheduler.PerformWait(snapshot)
	badged := d.badge.PerformWait(snapshot)
	if !scheduled || !badged {
		d.debouncer.Trigger()
	}
}

// Flush runs a pending recompute now instead of waiting for the quiet period.
func (d *Daemon) Flush() bool {
	return d.debouncer.Flush()
}

// Server returns the API server, or nil when the API is disabled.
func (d *Daemon) Server() *api.Server {
	return d.server
}

func (d *Daemon) subscribe(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	d.colTok = d.col.Subscribe(func(c source.Change) {
		switch c.Kind {
		case source.Initial:
			d.debouncer.Trigger()
			d.debouncer.Flush()
		case source.Update:
			d.debouncer.Trigger()
		case source.Error:
			d.log.Error("reminder collection failed, retrying", "err", c.Err, "in", resubscribeDelay)
			time.AfterFunc(resubscribeDelay, func() { d.subscribe(ctx) })
		}
	})
}

// pruneIcons drops icons of vessels deleted while the daemon was not
// looking, for example through the CLI with a different icon_dir.
func (d *Daemon) pruneIcons(ctx context.Context) {
	if d.icons == nil {
		return
	}
	vessels, err := d.store.GetAllVessels()
	if err != nil {
		d.log.Warn("failed to list vessels for icon pruning", "err", err)
		return
	}
	keep := make(map[string]bool, len(vessels))
	for _, v := range vessels {
		keep[v.ID] = true
	}
	n, err := d.icons.Prune(ctx, keep)
	if err != nil {
		d.log.Warn("failed to prune icons", "err", err)
		return
	}
	if n > 0 {
		d.log.Info("pruned orphaned icons", "count", n)
	}
}

func (d *Daemon) onDayChange(now time.Time) {
	d.log.Info("day changed, refreshing", "now", now)
	d.badge.Perform(d.col.Snapshot())
	d.debouncer.Trigger()
	if d.server != nil {
		d.server.Tick()
	}
}

// localNow reads the clock in the configured timezone.
func (d *Daemon) localNow() time.Time {
	settings, err := d.store.GetSettings()
	if err != nil {
		return d.now()
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return d.now()
	}
	return d.now().In(loc)
}

// settingsChanged rereads the settings and reports whether they differ from
// the last read. The file watcher cannot tell the daemon's own notification
// writes from a settings edit.
func (d *Daemon) settingsChanged() bool {
	s, err := d.store.GetSettings()
	if err != nil {
		d.log.Warn("failed to read settings", "err", err)
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if s == d.settings {
		return false
	}
	d.settings = s
	return true
}

// follow refreshes on writes made by other processes.
func (d *Daemon) follow(ctx context.Context) error {
	feed, err := d.store.Watch(ctx)
	if err != nil {
		d.log.Warn("cannot watch storage, only in-process changes will be seen", "err", err)
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-feed:
			if !ok {
				return nil
			}
			if ch.Touches(storage.EntityReminders) || ch.Touches(storage.EntityVessels) {
				d.col.Refresh()
			}
			if ch.Touches(storage.EntitySettings) && d.settingsChanged() {
				d.debouncer.Trigger()
			}
		}
	}
}

// Run blocks until ctx is done. A pending recompute is flushed before it
// returns.
func (d *Daemon) Run(ctx context.Context) error {
	d.settingsChanged()
	settingsTok := d.store.OnChange(func(ch storage.Change) {
		if ch.Entity == storage.EntitySettings && d.settingsChanged() {
			d.debouncer.Trigger()
		}
	})
	defer settingsTok.Invalidate()

	g, gctx := errgroup.WithContext(ctx)
	d.pruneIcons(gctx)
	d.subscribe(gctx)
	g.Go(func() error {
		return d.deliverer.Run(gctx, d.cfg.Daemon.DeliveryInterval)
	})
	g.Go(func() error {
		return NewDayChangeDetector(d.cfg.Daemon.DayCheckInterval, d.localNow, d.onDayChange).Run(gctx)
	})
	g.Go(func() error {
		flushOnSignal(gctx, func() {
			if !d.Flush() {
				d.log.Info("nothing to flush")
			}
		})
		return nil
	})
	if d.cfg.Daemon.Watch {
		g.Go(func() error { return d.follow(gctx) })
	}
	if d.server != nil {
		g.Go(func() error { return d.server.Run(gctx, d.cfg.API.Listen) })
	}

	d.log.Info("daemon started", "quiet_period", d.cfg.Daemon.QuietPeriod, "api", d.server != nil)
	err := g.Wait()
	d.shutdown()
	return err
}

func (d *Daemon) shutdown() {
	d.mu.Lock()
	if d.colTok != nil {
		d.colTok.Invalidate()
	}
	d.mu.Unlock()

	d.col.Sync()
	d.debouncer.Flush()
	d.debouncer.Close()
	d.worker.Sync()
	d.worker.Close()
	if d.server != nil {
		d.server.Close()
	}
	d.col.Close()
	d.log.Info("daemon stopped")
}
