package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/waterme/internal/notifications"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the notifications the scheduler would queue right now.
type Model struct {
	viewport viewport.Model
	entries  []notifications.PlanEntry
	disabled bool
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetPlan replaces the entries. disabled means notifications are turned off.
func (m *Model) SetPlan(entries []notifications.PlanEntry, disabled bool) {
	m.entries = entries
	m.disabled = disabled
	m.Render()
}

func (m *Model) Render() {
	if m.disabled {
		m.viewport.SetContent("Notifications are turned off.")
		return
	}
	if len(m.entries) == 0 {
		m.viewport.SetContent("Nothing to notify about.")
		return
	}

	var b strings.Builder
	for _, e := range m.entries {
		body := notifications.Body(e)
		status := fmt.Sprintf("%d due", e.ItemCount)
		if e.IsImmediate {
			body = "(badge only)"
			status += ", now"
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			timeStyle.Render(e.FireAt.Format("Mon Jan 2 15:04")),
			bodyStyle.Render(body),
			statusStyle.Render(status),
		)
	}
	m.viewport.SetContent(b.String())
}
