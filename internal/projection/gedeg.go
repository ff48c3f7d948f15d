// Package projection groups the live reminder collection into the five
// time buckets and reports changes as section qualified row indices.
package projection

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/waterme/internal/assert"
	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/diff"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/observe"
	"github.com/julianstephens/waterme/internal/source"
)

// IndexPath locates a row inside a section.
type IndexPath struct {
	Section bucket.Kind `json:"section"`
	Row     int         `json:"row"`
}

type ChangeKind int

const (
	Initial ChangeKind = iota
	Update
	Error
)

// Change is handed to the observer. Deletions and Modifications refer to
// the sections before the change, Insertions to the sections after it.
type Change struct {
	Kind          ChangeKind
	Insertions    []IndexPath
	Deletions     []IndexPath
	Modifications []IndexPath
	Err           error
}

// Source is the live collection the projection reads from.
type Source interface {
	Subscribe(func(source.Change)) observe.Token
	Lookup(id string) (models.Reminder, bool)
}

// Dispatcher runs fn on the context observers expect to be called on.
type Dispatcher func(fn func())

type Option func(*Gedeg)

// WithDispatcher routes observer calls through d instead of the
// projection's own serial queue.
func WithDispatcher(d Dispatcher) Option {
	return func(g *Gedeg) { g.dispatch = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gedeg) { g.now = now }
}

func WithFirstWeekday(d time.Weekday) Option {
	return func(g *Gedeg) { g.firstWeekday = d }
}

func WithLogger(l *log.Logger) Option {
	return func(g *Gedeg) { g.log = l }
}

// Gedeg is the grouped projection: five sections of reminder ids ordered by
// due date. It only does work while an observer is installed.
type Gedeg struct {
	src          Source
	dispatch     Dispatcher
	queue        *observe.Queue
	now          func() time.Time
	firstWeekday time.Weekday
	log          *log.Logger

	// mu serialises subscription changes, source events and ticks
	mu       sync.Mutex
	gen      atomic.Uint64 // bumped whenever the subscription is replaced or dropped
	observer func(Change)
	sub      observe.Token
	work     *state

	pubMu sync.RWMutex
	pub   *state
}

func New(src Source, opts ...Option) *Gedeg {
	g := &Gedeg{
		src:          src,
		now:          time.Now,
		firstWeekday: time.Sunday,
		work:         newState(),
		pub:          newState(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.For("projection")
	}
	if g.dispatch == nil {
		g.queue = observe.NewQueue()
		g.dispatch = func(fn func()) { g.queue.Dispatch(fn) }
	}
	return g
}

func (g *Gedeg) NumberOfSections() int {
	return bucket.Count
}

func (g *Gedeg) NumberOfRows(section bucket.Kind) int {
	if section < 0 || int(section) >= bucket.Count {
		return 0
	}
	g.pubMu.RLock()
	defer g.pubMu.RUnlock()
	return len(g.pub.sections[section])
}

// ID returns the reminder id at path.
func (g *Gedeg) ID(path IndexPath) (string, bool) {
	g.pubMu.RLock()
	defer g.pubMu.RUnlock()
	if path.Section < 0 || int(path.Section) >= bucket.Count {
		return "", false
	}
	rows := g.pub.sections[path.Section]
	if path.Row < 0 || path.Row >= len(rows) {
		return "", false
	}
	return rows[path.Row], true
}

// Item resolves the id at path and fetches its current data from the source.
func (g *Gedeg) Item(path IndexPath) (models.Reminder, bool) {
	id, ok := g.ID(path)
	if !ok {
		return models.Reminder{}, false
	}
	return g.src.Lookup(id)
}

func (g *Gedeg) RowIndex(id string) (IndexPath, bool) {
	g.pubMu.RLock()
	defer g.pubMu.RUnlock()
	p, ok := g.pub.where[id]
	return p, ok
}

// Sections returns a copy of every section's ids.
func (g *Gedeg) Sections() [bucket.Count][]string {
	g.pubMu.RLock()
	defer g.pubMu.RUnlock()
	var out [bucket.Count][]string
	for i, ids := range g.pub.sections {
		out[i] = append([]string(nil), ids...)
	}
	return out
}

// SetObserver installs fn and subscribes to the source. A nil fn tears the
// subscription down and empties the sections.
func (g *Gedeg) SetObserver(fn func(Change)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	gen := g.gen.Add(1)
	if g.sub != nil {
		g.sub.Invalidate()
		g.sub = nil
	}
	g.observer = fn
	g.work = newState()
	if fn == nil {
		g.publishLocked(nil)
		return
	}
	g.sub = g.src.Subscribe(func(c source.Change) { g.handle(gen, c) })
}

// Tick re-buckets everything against now and reports it as Initial. It is
// called when the day rolls over or after a long suspension.
func (g *Gedeg) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sub == nil {
		return
	}
	g.work = g.work.rebucket(g.now(), g.firstWeekday)
	g.publishLocked(&Change{Kind: Initial})
}

// Close drops the observer and stops the default dispatcher.
func (g *Gedeg) Close() {
	g.SetObserver(nil)
	if g.queue != nil {
		g.queue.Close()
	}
}

// Sync waits for pending observer calls on the default dispatcher.
func (g *Gedeg) Sync() {
	if g.queue != nil {
		g.queue.Sync()
	}
}

func (g *Gedeg) handle(gen uint64, c source.Change) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen.Load() {
		return
	}

	switch c.Kind {
	case source.Initial:
		g.work = build(c.Snapshot, g.now(), g.firstWeekday)
		g.publishLocked(&Change{Kind: Initial})
	case source.Update:
		ch, ok := g.applyLocked(c)
		if !ok {
			return
		}
		g.publishLocked(ch)
	case source.Error:
		g.log.Error("projection lost its source", "err", c.Err)
		if g.sub != nil {
			g.sub.Invalidate()
			g.sub = nil
		}
		g.gen.Add(1)
		g.work = newState()
		g.publishLocked(&Change{Kind: Error, Err: c.Err})
	}
}

// applyLocked folds an update into the working state and returns the
// section level change.
func (g *Gedeg) applyLocked(c source.Change) (*Change, bool) {
	now := g.now()
	set := bucket.Compute(now, g.firstWeekday)
	old := g.work
	next := old.clone()

	modified := make(map[string]bool, len(c.Modifications))
	for _, i := range append(append([]int(nil), c.Deletions...), c.Modifications...) {
		if !assert.That(i >= 0 && i < len(old.ids), "source index out of range", "index", i, "count", len(old.ids)) {
			continue
		}
		next.remove(old.ids[i])
	}
	for _, i := range c.Modifications {
		if i >= 0 && i < len(old.ids) {
			modified[old.ids[i]] = true
		}
	}

	newIDs := make([]string, len(c.Snapshot))
	byID := make(map[string]models.Reminder, len(c.Snapshot))
	for j, r := range c.Snapshot {
		newIDs[j] = r.ID
		byID[r.ID] = r
	}
	for _, j := range c.Insertions {
		if !assert.That(j >= 0 && j < len(c.Snapshot), "source index out of range", "index", j, "count", len(c.Snapshot)) {
			continue
		}
		next.insert(c.Snapshot[j], now, set)
	}
	for id := range modified {
		if r, ok := byID[id]; assert.That(ok, "modified reminder missing from snapshot", "id", id) {
			next.insert(r, now, set)
		}
	}
	next.ids = newIDs
	assert.That(len(next.where) == len(newIDs), "projection lost track of reminders",
		"sections", len(next.where), "source", len(newIDs))

	ch := &Change{Kind: Update}
	for _, k := range bucket.All {
		d := diff.IDs(old.sections[k], next.sections[k], func(i, _ int) bool {
			return modified[old.sections[k][i]]
		})
		for _, row := range d.Deletions {
			ch.Deletions = append(ch.Deletions, IndexPath{Section: k, Row: row})
		}
		for _, row := range d.Insertions {
			ch.Insertions = append(ch.Insertions, IndexPath{Section: k, Row: row})
		}
		for _, row := range d.Modifications {
			ch.Modifications = append(ch.Modifications, IndexPath{Section: k, Row: row})
		}
	}
	g.work = next
	if len(ch.Insertions) == 0 && len(ch.Deletions) == 0 && len(ch.Modifications) == 0 {
		return nil, false
	}
	return ch, true
}

// publishLocked hands a copy of the working state, and ch if set, to the
// dispatcher. The published state and the observer call change together.
func (g *Gedeg) publishLocked(ch *Change) {
	snapshot := g.work.clone()
	observer := g.observer
	gen := g.gen.Load()
	g.dispatch(func() {
		g.pubMu.Lock()
		g.pub = snapshot
		g.pubMu.Unlock()
		if ch == nil || observer == nil {
			return
		}
		if gen == g.gen.Load() {
			observer(*ch)
		}
	})
}

type entry struct {
	key  time.Time
	next *time.Time
}

type state struct {
	sections [bucket.Count][]string
	where    map[string]IndexPath
	entries  map[string]entry
	ids      []string // source order, used to resolve source indices
}

func newState() *state {
	return &state{where: map[string]IndexPath{}, entries: map[string]entry{}}
}

func build(items []models.Reminder, now time.Time, firstWeekday time.Weekday) *state {
	s := newState()
	set := bucket.Compute(now, firstWeekday)
	s.ids = make([]string, len(items))
	for i, r := range items {
		s.ids[i] = r.ID
		s.insert(r, now, set)
	}
	return s
}

func (s *state) clone() *state {
	c := &state{
		where:   make(map[string]IndexPath, len(s.where)),
		entries: make(map[string]entry, len(s.entries)),
		ids:     append([]string(nil), s.ids...),
	}
	for i, ids := range s.sections {
		c.sections[i] = append([]string(nil), ids...)
	}
	for k, v := range s.where {
		c.where[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	return c
}

func (s *state) rebucket(now time.Time, firstWeekday time.Weekday) *state {
	out := newState()
	out.ids = append([]string(nil), s.ids...)
	set := bucket.Compute(now, firstWeekday)
	for _, id := range s.ids {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		out.place(id, e.next, now, set)
	}
	return out
}

func (s *state) insert(r models.Reminder, now time.Time, set bucket.Set) {
	var next *time.Time
	if r.NextPerformDate != nil {
		t := *r.NextPerformDate
		next = &t
	}
	s.place(r.ID, next, now, set)
}

func (s *state) place(id string, next *time.Time, now time.Time, set bucket.Set) {
	key := now
	if next != nil {
		key = *next
	}
	k := set.Of(key)
	rows := s.sections[k]
	row := sort.Search(len(rows), func(i int) bool {
		e := s.entries[rows[i]]
		if !e.key.Equal(key) {
			return e.key.After(key)
		}
		return rows[i] > id
	})
	rows = append(rows, "")
	copy(rows[row+1:], rows[row:])
	rows[row] = id
	s.sections[k] = rows
	s.entries[id] = entry{key: key, next: next}
	s.reindex(k, row)
}

func (s *state) remove(id string) {
	p, ok := s.where[id]
	if !assert.That(ok, "removing a reminder the projection does not hold", "id", id) {
		return
	}
	rows := s.sections[p.Section]
	s.sections[p.Section] = append(rows[:p.Row:p.Row], rows[p.Row+1:]...)
	delete(s.where, id)
	delete(s.entries, id)
	s.reindex(p.Section, p.Row)
}

func (s *state) reindex(k bucket.Kind, from int) {
	for row := from; row < len(s.sections[k]); row++ {
		s.where[s.sections[k][row]] = IndexPath{Section: k, Row: row}
	}
}
