package projection

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/observe"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage"
)

// Tuesday
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu        sync.Mutex
	reminders []models.Reminder
	err       error
	changes   observe.Notifier[storage.Change]
}

func (f *fakeStore) GetAllReminders() ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := append([]models.Reminder(nil), f.reminders...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].NextPerformDate, out[j].NextPerformDate
		if (a == nil) != (b == nil) {
			return a == nil
		}
		if a != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) GetAllVessels() ([]models.Vessel, error) { return nil, nil }

func (f *fakeStore) OnChange(fn func(storage.Change)) observe.Token {
	return f.changes.Subscribe(fn)
}

func (f *fakeStore) set(reminders ...models.Reminder) {
	f.mu.Lock()
	f.reminders = reminders
	f.mu.Unlock()
	f.changes.Emit(storage.Change{Entity: storage.EntityReminders})
}

func (f *fakeStore) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	f.changes.Emit(storage.Change{Entity: storage.EntityReminders})
}

func due(id string, offsetDays int) models.Reminder {
	t := now.AddDate(0, 0, offsetDays)
	return models.Reminder{ID: id, VesselID: "v", IntervalDays: 7, IsEnabled: true, NextPerformDate: &t}
}

func never(id string) models.Reminder {
	return models.Reminder{ID: id, VesselID: "v", IntervalDays: 7, IsEnabled: true}
}

type harness struct {
	store *fakeStore
	col   *source.Collection
	g     *Gedeg

	mu      sync.Mutex
	clock   time.Time
	changes []Change
	mirror  [bucket.Count][]string
	t       *testing.T
}

func newHarness(t *testing.T, reminders ...models.Reminder) *harness {
	h := &harness{store: &fakeStore{reminders: reminders}, clock: now, t: t}
	h.col = source.New(h.store)
	h.g = New(h.col, WithClock(h.now))
	t.Cleanup(func() {
		h.g.Close()
		h.col.Close()
	})
	return h
}

func (h *harness) now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clock
}

func (h *harness) observe() {
	h.g.SetObserver(func(c Change) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.changes = append(h.changes, c)
		sections := h.g.Sections()
		switch c.Kind {
		case Initial, Error:
			h.mirror = sections
		case Update:
			h.mirror = replay(h.mirror, sections, c)
		}
	})
}

func (h *harness) sync() {
	h.col.Sync()
	h.g.Sync()
}

func (h *harness) last() Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.changes) == 0 {
		h.t.Fatal("no changes observed")
	}
	return h.changes[len(h.changes)-1]
}

// replay applies c to the previous sections the way a table view would.
func replay(prev, next [bucket.Count][]string, c Change) [bucket.Count][]string {
	var out [bucket.Count][]string
	for k := range prev {
		out[k] = append([]string(nil), prev[k]...)
	}
	dels := append([]IndexPath(nil), c.Deletions...)
	sort.Slice(dels, func(i, j int) bool {
		if dels[i].Section != dels[j].Section {
			return dels[i].Section < dels[j].Section
		}
		return dels[i].Row > dels[j].Row
	})
	for _, p := range dels {
		rows := out[p.Section]
		out[p.Section] = append(rows[:p.Row:p.Row], rows[p.Row+1:]...)
	}
	for _, p := range c.Insertions {
		rows := append(out[p.Section], "")
		copy(rows[p.Row+1:], rows[p.Row:])
		rows[p.Row] = next[p.Section][p.Row]
		out[p.Section] = rows
	}
	return out
}

func TestGedeg_InitialBuckets(t *testing.T) {
	h := newHarness(t,
		due("late", -1), never("fresh"), due("tomorrow", 1), due("friday", 3), due("later", 10),
	)
	h.observe()
	h.sync()

	if h.last().Kind != Initial {
		t.Fatalf("first change = %v", h.last().Kind)
	}
	want := map[string]IndexPath{
		"late":     {bucket.Late, 0},
		"fresh":    {bucket.Today, 0},
		"tomorrow": {bucket.Tomorrow, 0},
		"friday":   {bucket.ThisWeek, 0},
		"later":    {bucket.Later, 0},
	}
	for id, p := range want {
		got, ok := h.g.RowIndex(id)
		if !ok || got != p {
			t.Errorf("RowIndex(%s) = %v, %v; want %v", id, got, ok, p)
		}
	}
	if h.g.NumberOfSections() != 5 {
		t.Errorf("NumberOfSections = %d", h.g.NumberOfSections())
	}
	r, ok := h.g.Item(IndexPath{bucket.Tomorrow, 0})
	if !ok || r.ID != "tomorrow" {
		t.Errorf("Item = %v, %v", r.ID, ok)
	}
	if _, ok := h.g.Item(IndexPath{bucket.Tomorrow, 3}); ok {
		t.Error("Item out of range should report false")
	}
}

func TestGedeg_SectionOrdering(t *testing.T) {
	h := newHarness(t, due("b", 10), due("a", 10), due("c", 12), due("z", -3), due("y", -5))
	h.observe()
	h.sync()

	s := h.g.Sections()
	if fmt.Sprint(s[bucket.Later]) != "[a b c]" {
		t.Errorf("later = %v", s[bucket.Later])
	}
	if fmt.Sprint(s[bucket.Late]) != "[y z]" {
		t.Errorf("late = %v", s[bucket.Late])
	}
}

func TestGedeg_UpdateMovesAcrossSections(t *testing.T) {
	h := newHarness(t, due("a", -1), due("b", 1))
	h.observe()
	h.sync()

	// performing a pushes it into next week
	h.store.set(due("a", 7), due("b", 1))
	h.sync()

	c := h.last()
	if c.Kind != Update {
		t.Fatalf("kind = %v", c.Kind)
	}
	if fmt.Sprint(c.Deletions) != fmt.Sprint([]IndexPath{{bucket.Late, 0}}) {
		t.Errorf("deletions = %v", c.Deletions)
	}
	if fmt.Sprint(c.Insertions) != fmt.Sprint([]IndexPath{{bucket.Later, 0}}) {
		t.Errorf("insertions = %v", c.Insertions)
	}
	if len(c.Modifications) != 0 {
		t.Errorf("modifications = %v", c.Modifications)
	}
}

func TestGedeg_ModificationInPlace(t *testing.T) {
	h := newHarness(t, due("a", 1), due("b", 1))
	h.observe()
	h.sync()

	a := due("a", 1)
	a.Note = "use rain water"
	h.store.set(a, due("b", 1))
	h.sync()

	c := h.last()
	if fmt.Sprint(c.Modifications) != fmt.Sprint([]IndexPath{{bucket.Tomorrow, 0}}) {
		t.Errorf("modifications = %v", c.Modifications)
	}
	if len(c.Insertions) != 0 || len(c.Deletions) != 0 {
		t.Errorf("unexpected structural change %+v", c)
	}
	r, _ := h.g.Item(IndexPath{bucket.Tomorrow, 0})
	if r.Note != "use rain water" {
		t.Errorf("Item returned stale data: %q", r.Note)
	}
}

func TestGedeg_RandomUpdatesKeepEveryReminder(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	h := newHarness(t)
	h.observe()
	h.sync()

	pool := map[string]models.Reminder{}
	for round := 0; round < 60; round++ {
		edits := 1 + rng.IntN(4)
		for i := 0; i < edits; i++ {
			id := fmt.Sprintf("r%02d", rng.IntN(25))
			switch rng.IntN(4) {
			case 0:
				delete(pool, id)
			case 1:
				pool[id] = never(id)
			default:
				pool[id] = due(id, rng.IntN(20)-5)
			}
		}
		var all []models.Reminder
		for _, r := range pool {
			all = append(all, r)
		}
		h.store.set(all...)
		h.sync()

		var got []string
		for _, ids := range h.g.Sections() {
			got = append(got, ids...)
		}
		sort.Strings(got)
		var want []string
		for _, r := range h.col.Snapshot() {
			want = append(want, r.ID)
		}
		sort.Strings(want)
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("round %d: sections hold %v, source holds %v", round, got, want)
		}

		h.mu.Lock()
		mirror := h.mirror
		h.mu.Unlock()
		if fmt.Sprint(mirror) != fmt.Sprint(h.g.Sections()) {
			t.Fatalf("round %d: replayed %v, sections %v", round, mirror, h.g.Sections())
		}
	}
}

func TestGedeg_TickRebuckets(t *testing.T) {
	h := newHarness(t, due("a", 1))
	h.observe()
	h.sync()
	if p, _ := h.g.RowIndex("a"); p.Section != bucket.Tomorrow {
		t.Fatalf("section = %v", p.Section)
	}

	h.mu.Lock()
	h.clock = now.AddDate(0, 0, 1)
	h.mu.Unlock()
	h.g.Tick()
	h.sync()

	if p, _ := h.g.RowIndex("a"); p.Section != bucket.Today {
		t.Errorf("after tick section = %v, want Today", p.Section)
	}
	if h.last().Kind != Initial {
		t.Errorf("tick should be reported as initial, got %v", h.last().Kind)
	}
}

func TestGedeg_ErrorEmptiesSections(t *testing.T) {
	h := newHarness(t, due("a", 1))
	h.observe()
	h.sync()

	boom := errors.New("store closed")
	h.store.fail(boom)
	h.sync()

	c := h.last()
	if c.Kind != Error || !errors.Is(c.Err, boom) {
		t.Fatalf("last change = %+v", c)
	}
	for k := range bucket.All {
		if n := h.g.NumberOfRows(bucket.Kind(k)); n != 0 {
			t.Errorf("section %d has %d rows after error", k, n)
		}
	}

	// observing again recovers
	h.store.fail(nil)
	h.observe()
	h.sync()
	if h.g.NumberOfRows(bucket.Tomorrow) != 1 {
		t.Error("re-observing should reload the sections")
	}
}

func TestGedeg_NoWorkWhileUnobserved(t *testing.T) {
	h := newHarness(t, due("a", 1))
	h.sync()
	if h.g.NumberOfRows(bucket.Tomorrow) != 0 {
		t.Error("projection should be empty before an observer is installed")
	}

	h.observe()
	h.sync()
	h.g.SetObserver(nil)
	h.sync()
	n := len(h.changes)

	h.store.set(due("a", 1), due("b", 2))
	h.sync()
	if len(h.changes) != n {
		t.Error("observer was called after being removed")
	}
	if h.g.NumberOfRows(bucket.Tomorrow) != 0 {
		t.Error("sections should be empty once the observer is removed")
	}
}

func TestGedeg_CustomDispatcher(t *testing.T) {
	store := &fakeStore{reminders: []models.Reminder{due("a", 0)}}
	col := source.New(store)
	defer col.Close()

	var mu sync.Mutex
	var dispatched int
	g := New(col, WithClock(func() time.Time { return now }), WithDispatcher(func(fn func()) {
		mu.Lock()
		dispatched++
		mu.Unlock()
		fn()
	}))
	defer g.Close()

	done := make(chan Change, 1)
	g.SetObserver(func(c Change) { done <- c })
	col.Sync()

	select {
	case c := <-done:
		if c.Kind != Initial {
			t.Errorf("kind = %v", c.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("observer not called")
	}
	mu.Lock()
	defer mu.Unlock()
	if dispatched == 0 {
		t.Error("custom dispatcher was not used")
	}
}
