package vessels

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/waterme/internal/models"
)

type AddVesselMsg struct{}

type DeleteVesselMsg struct {
	ID string
}

type EditVesselMsg struct {
	Vessel models.Vessel
}

type Item struct {
	Vessel models.Vessel
}

func (i Item) Title() string {
	icon := i.Vessel.Icon.Emoji
	if i.Vessel.Icon.Kind == models.IconImage || icon == "" {
		icon = "🖼"
	}
	return icon + " " + i.Vessel.Name()
}

func (i Item) Description() string {
	n := len(i.Vessel.ReminderIDs)
	if n == 1 {
		return fmt.Sprintf("%s | 1 reminder", i.Vessel.Kind)
	}
	return fmt.Sprintf("%s | %d reminders", i.Vessel.Kind, n)
}

func (i Item) FilterValue() string { return i.Vessel.Name() }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(vessels []models.Vessel, width, height int) Model {
	l := list.New(toItems(vessels), list.NewDefaultDelegate(), width, height)
	l.Title = "Plants"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

func toItems(vessels []models.Vessel) []list.Item {
	items := make([]list.Item, len(vessels))
	for i, v := range vessels {
		items[i] = Item{Vessel: v}
	}
	return items
}

func (m *Model) SetVessels(vessels []models.Vessel) {
	m.list.SetItems(toItems(vessels))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddVesselMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditVesselMsg(i) }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteVesselMsg{ID: i.Vessel.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No plants yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
