package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/notifications"
	"github.com/julianstephens/waterme/internal/projection"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/tui/components/garden"
	"github.com/julianstephens/waterme/internal/tui/components/plan"
	"github.com/julianstephens/waterme/internal/tui/components/vessels"
	"github.com/julianstephens/waterme/internal/utils"
)

type SessionState int

const (
	StateGarden SessionState = iota
	StateVessels
	StatePlan
	StateAddVessel
	StateEditVessel
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

type VesselFormModel struct {
	Name     string
	Kind     models.KindType
	Interval string
}

// applyMsg carries a projection update onto the UI goroutine.
type applyMsg struct {
	fn func()
}

type tickMsg time.Time

// changeLog remembers the last projection change. The observer writes it
// from inside applyMsg, so it is only touched on the UI goroutine.
type changeLog struct {
	last  projection.Change
	count int
}

type Option func(*options)

type options struct {
	dispatch projection.Dispatcher
	now      func() time.Time
}

// WithDispatcher sets how projection updates reach the UI. Run wires it to
// the program's Send.
func WithDispatcher(d projection.Dispatcher) Option {
	return func(o *options) { o.dispatch = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type Model struct {
	store   storage.Provider
	col     *source.Collection
	gedeg   *projection.Gedeg
	now     func() time.Time
	changes *changeLog

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	garden     garden.Model
	vesselList vessels.Model
	planModel  plan.Model

	form             *huh.Form
	vesselForm       *VesselFormModel
	editingVessel    *models.Vessel
	vesselToDeleteID string

	status   string
	lastDay  time.Time
	quitting bool
	width    int
	height   int
}

func NewModel(store storage.Provider, col *source.Collection, opts ...Option) Model {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	m := Model{
		store:      store,
		col:        col,
		now:        o.now,
		changes:    &changeLog{},
		state:      StateGarden,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		garden:     garden.New(0, 0),
		vesselList: vessels.New(nil, 0, 0),
		planModel:  plan.New(0, 0),
	}

	settings, err := store.GetSettings()
	if err != nil {
		settings = models.DefaultSettings()
	}
	gopts := []projection.Option{
		projection.WithClock(m.localNow),
		projection.WithFirstWeekday(settings.FirstWeekday()),
		projection.WithLogger(logger.For("tui")),
	}
	if o.dispatch != nil {
		gopts = append(gopts, projection.WithDispatcher(o.dispatch))
	}
	m.gedeg = projection.New(col, gopts...)
	m.lastDay = m.localNow()
	return m
}

func (m Model) localNow() time.Time {
	settings, err := m.store.GetSettings()
	if err != nil {
		return m.now()
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return m.now()
	}
	return m.now().In(loc)
}

func (m Model) observe() {
	changes := m.changes
	m.gedeg.SetObserver(func(c projection.Change) {
		changes.last = c
		changes.count++
	})
}

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	m.observe()
	return tick()
}

// Close stops observing the projection.
func (m Model) Close() {
	m.gedeg.Close()
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateGarden:
		keys = append(keys, m.keys.Perform, m.keys.Refresh)
	case StateVessels:
		keys = append(keys, m.keys.Add, m.keys.Edit, m.keys.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateGarden:
		actions = []key.Binding{m.keys.Perform, m.keys.Refresh}
	case StateVessels:
		actions = []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete}
	}
	return [][]key.Binding{global, navigation, actions}
}

// syncFromProjection rebuilds every view from the projection's published
// state and the store.
func (m *Model) syncFromProjection() {
	now := m.localNow()
	sections := make([]garden.Section, 0, bucket.Count)
	for _, k := range bucket.All {
		sec := garden.Section{Title: k.String(), Kind: k}
		for row := 0; row < m.gedeg.NumberOfRows(k); row++ {
			r, ok := m.gedeg.Item(projection.IndexPath{Section: k, Row: row})
			if !ok {
				continue
			}
			sec.Rows = append(sec.Rows, garden.Row{
				ID:    r.ID,
				Plant: m.col.VesselName(r.VesselID),
				Task:  r.Kind.DisplayName(),
				Due:   dueLabel(r, now),
			})
		}
		sections = append(sections, sec)
	}
	m.garden.SetSections(sections)

	if last := m.changes.last; last.Kind == projection.Error {
		m.status = fmt.Sprintf("reminders unavailable: %v (press r to retry)", last.Err)
	}

	if all, err := m.store.GetAllVessels(); err == nil {
		m.vesselList.SetVessels(all)
	}
	m.refreshPlan(now)
}

func (m *Model) refreshPlan(now time.Time) {
	settings, err := m.store.GetSettings()
	if err != nil {
		m.status = fmt.Sprintf("failed to read settings: %v", err)
		return
	}
	entries := notifications.BuildPlan(m.col.Snapshot(), m.col, notifications.ConfigFromSettings(settings), now, nil)
	m.planModel.SetPlan(entries, !settings.NotificationsEnabled)
}

func dueLabel(r models.Reminder, now time.Time) string {
	if r.NextPerformDate == nil {
		return "never done"
	}
	due := r.NextPerformDate.In(now.Location())
	switch {
	case due.Before(utils.StartOfDay(now)):
		return "since " + due.Format("Jan 2")
	case utils.IsSameDay(due, now):
		return "today"
	default:
		return due.Format("Mon Jan 2")
	}
}
