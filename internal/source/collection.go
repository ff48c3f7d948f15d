// Package source adapts the store into an observable, ordered collection of
// enabled reminders. Every change is reported as index sets against the
// previous snapshot.
package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/observe"
	"github.com/julianstephens/waterme/internal/storage"
)

type ChangeKind int

const (
	Initial ChangeKind = iota
	Update
	Error
)

func (k ChangeKind) String() string {
	switch k {
	case Initial:
		return "initial"
	case Update:
		return "update"
	default:
		return "error"
	}
}

// Change is delivered to subscribers. Deletions and Modifications index into
// the previous snapshot, Insertions into Snapshot.
type Change struct {
	Kind          ChangeKind
	Snapshot      []models.Reminder
	Insertions    []int
	Deletions     []int
	Modifications []int
	Err           error
}

// Empty reports whether an update carries no index changes.
func (c Change) Empty() bool {
	return len(c.Insertions) == 0 && len(c.Deletions) == 0 && len(c.Modifications) == 0
}

// Store is the part of storage.Provider the collection reads from.
type Store interface {
	GetAllReminders() ([]models.Reminder, error)
	GetAllVessels() ([]models.Vessel, error)
	OnChange(func(storage.Change)) observe.Token
}

type Option func(*Collection)

func WithLogger(l *log.Logger) Option {
	return func(c *Collection) { c.log = l }
}

// Collection is the live reminder list. Events are delivered in mutation
// order on a single goroutine owned by the collection.
type Collection struct {
	store Store
	queue *observe.Queue
	log   *log.Logger

	mu      sync.RWMutex
	items   []models.Reminder
	index   map[string]int
	vessels map[string]models.Vessel
	loaded  bool

	subs     observe.Notifier[Change]
	active   []*observe.Composite // touched only on the queue goroutine
	storeTok observe.Token
}

func New(store Store, opts ...Option) *Collection {
	c := &Collection{
		store:   store,
		queue:   observe.NewQueue(),
		index:   map[string]int{},
		vessels: map[string]models.Vessel{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.For("source")
	}
	c.storeTok = store.OnChange(func(ch storage.Change) {
		if ch.Touches(storage.EntityReminders) || ch.Touches(storage.EntityVessels) {
			c.Refresh()
		}
	})
	return c
}

// Follow refreshes the collection for every change reported by feed until
// ctx is done or the feed closes. It is used with storage.Provider.Watch.
func (c *Collection) Follow(ctx context.Context, feed <-chan storage.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-feed:
			if !ok {
				return
			}
			if ch.Touches(storage.EntityReminders) || ch.Touches(storage.EntityVessels) {
				c.Refresh()
			}
		}
	}
}

// Subscribe registers handler. Its first event is Initial with the current
// snapshot, or Error if the store cannot be read. Nothing is delivered after
// an Error or after the token is invalidated.
func (c *Collection) Subscribe(handler func(Change)) observe.Token {
	sub := observe.NewComposite()
	if !c.queue.Dispatch(func() { c.attach(sub, handler) }) {
		sub.Invalidate()
	}
	return sub
}

func (c *Collection) attach(sub *observe.Composite, handler func(Change)) {
	if sub.Invalidated() {
		return
	}
	if !c.isLoaded() {
		if _, err := c.reload(); err != nil {
			c.log.Error("failed to load reminders", "err", err)
			handler(Change{Kind: Error, Err: err})
			sub.Invalidate()
			return
		}
	}
	sub.Add(c.subs.Subscribe(handler))
	c.active = append(c.active, sub)
	handler(Change{Kind: Initial, Snapshot: c.Snapshot()})
}

// Refresh re-reads the store and reports the difference to subscribers.
// It returns immediately; the work happens on the collection's goroutine.
func (c *Collection) Refresh() {
	c.queue.Dispatch(c.refresh)
}

func (c *Collection) refresh() {
	if !c.isLoaded() {
		return
	}
	ch, err := c.reload()
	if err != nil {
		c.fail(err)
		return
	}
	if ch.Empty() {
		return
	}
	c.subs.Emit(ch)
}

// fail delivers a terminal error and drops every subscription.
func (c *Collection) fail(err error) {
	c.log.Error("reminder collection failed", "err", err)
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()

	c.subs.Emit(Change{Kind: Error, Err: err})
	for _, sub := range c.active {
		sub.Invalidate()
	}
	c.active = nil
}

func (c *Collection) reload() (Change, error) {
	all, err := c.store.GetAllReminders()
	if err != nil {
		return Change{}, fmt.Errorf("failed to read reminders: %w", err)
	}
	vessels, err := c.store.GetAllVessels()
	if err != nil {
		return Change{}, fmt.Errorf("failed to read vessels: %w", err)
	}

	items := make([]models.Reminder, 0, len(all))
	for _, r := range all {
		if r.IsEnabled {
			items = append(items, r)
		}
	}
	index := make(map[string]int, len(items))
	for i, r := range items {
		index[r.ID] = i
	}
	byID := make(map[string]models.Vessel, len(vessels))
	for _, v := range vessels {
		byID[v.ID] = v
	}

	c.mu.Lock()
	old, oldVessels := c.items, c.vessels
	c.items, c.index, c.vessels, c.loaded = items, index, byID, true
	c.mu.Unlock()

	d := diffReminders(old, items, oldVessels, byID)
	c.pruneActive()
	return Change{
		Kind:          Update,
		Snapshot:      cloneAll(items),
		Insertions:    d.Insertions,
		Deletions:     d.Deletions,
		Modifications: d.Modifications,
	}, nil
}

func (c *Collection) pruneActive() {
	kept := c.active[:0]
	for _, sub := range c.active {
		if !sub.Invalidated() {
			kept = append(kept, sub)
		}
	}
	c.active = kept
}

func (c *Collection) isLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Snapshot returns a deep copy of the current reminders in order.
func (c *Collection) Snapshot() []models.Reminder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.items)
}

func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Item returns the reminder at index i of the current snapshot.
func (c *Collection) Item(i int) (models.Reminder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.items) {
		return models.Reminder{}, false
	}
	return c.items[i].Clone(), true
}

func (c *Collection) IndexOf(id string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	return i, ok
}

// Lookup returns the reminder with the given id from the current snapshot.
func (c *Collection) Lookup(id string) (models.Reminder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return models.Reminder{}, false
	}
	return c.items[i].Clone(), true
}

func (c *Collection) Vessel(id string) (models.Vessel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vessels[id]
	return v, ok
}

// VesselName resolves the display name of a reminder's vessel. Unknown
// vessels read as untitled.
func (c *Collection) VesselName(id string) string {
	if v, ok := c.Vessel(id); ok {
		return v.Name()
	}
	return constants.UntitledVesselName
}

// Sync blocks until every event queued before the call has been delivered.
func (c *Collection) Sync() {
	c.queue.Sync()
}

// Close stops listening to the store and drains pending events.
func (c *Collection) Close() {
	c.storeTok.Invalidate()
	c.queue.Close()
}

func cloneAll(items []models.Reminder) []models.Reminder {
	out := make([]models.Reminder, len(items))
	for i, r := range items {
		out[i] = r.Clone()
	}
	return out
}
