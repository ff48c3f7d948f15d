package garden

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/waterme/internal/bucket"
)

// sectionColors runs from wilting red for late reminders to fresh green for
// ones far off.
var sectionColors = [bucket.Count]lipgloss.AdaptiveColor{
	bucket.Late:     {Light: "160", Dark: "203"},
	bucket.Today:    {Light: "166", Dark: "215"},
	bucket.Tomorrow: {Light: "136", Dark: "186"},
	bucket.ThisWeek: {Light: "28", Dark: "114"},
	bucket.Later:    {Light: "30", Dark: "73"},
}

var sectionIcons = [bucket.Count]string{
	bucket.Late:     "🥀",
	bucket.Today:    "💧",
	bucket.Tomorrow: "🌤",
	bucket.ThisWeek: "🌱",
	bucket.Later:    "🌳",
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2)

	selectedStyle = rowStyle.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

type PerformMsg struct {
	ID string
}

type Row struct {
	ID    string
	Plant string
	Task  string
	Due   string
}

type Section struct {
	Title string
	Kind  bucket.Kind
	Rows  []Row
}

func (s Section) header() string {
	style := headerStyle.Foreground(sectionColors[s.Kind])
	if s.Kind == bucket.Late {
		style = style.Underline(true)
	}
	return style.Render(fmt.Sprintf("%s %s (%d)", sectionIcons[s.Kind], s.Title, len(s.Rows)))
}

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Perform key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Perform: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p", "done"),
		),
	}
}

// Model renders the five buckets with a cursor that moves across all rows.
type Model struct {
	sections []Section
	cursor   int
	keys     KeyMap
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{keys: DefaultKeyMap(), width: width, height: height}
}

func (m Model) rowCount() int {
	n := 0
	for _, s := range m.sections {
		n += len(s.Rows)
	}
	return n
}

// Selected returns the id under the cursor.
func (m Model) Selected() (string, bool) {
	i := m.cursor
	for _, s := range m.sections {
		if i < len(s.Rows) {
			return s.Rows[i].ID, true
		}
		i -= len(s.Rows)
	}
	return "", false
}

// SetSections replaces the content, keeping the cursor on the same
// reminder when it is still present.
func (m *Model) SetSections(sections []Section) {
	selected, hadSelection := m.Selected()
	m.sections = sections
	if hadSelection {
		i := 0
		for _, s := range sections {
			for _, r := range s.Rows {
				if r.ID == selected {
					m.cursor = i
					return
				}
				i++
			}
		}
	}
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < m.rowCount()-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Perform):
			if id, ok := m.Selected(); ok {
				return m, func() tea.Msg { return PerformMsg{ID: id} }
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.rowCount() == 0 {
		return "\n  Nothing to take care of.\n  Add a plant in the Plants tab."
	}

	var b strings.Builder
	i := 0
	for _, s := range m.sections {
		if len(s.Rows) == 0 {
			continue
		}
		b.WriteString(s.header())
		b.WriteString("\n")
		for _, r := range s.Rows {
			line := fmt.Sprintf("%s · %s %s", r.Plant, r.Task, dueStyle.Render(r.Due))
			if i == m.cursor {
				b.WriteString(selectedStyle.Render(line))
			} else {
				b.WriteString(rowStyle.Render(line))
			}
			b.WriteString("\n")
			i++
		}
	}
	return b.String()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
