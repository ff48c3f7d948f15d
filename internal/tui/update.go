package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/tui/components/garden"
	"github.com/julianstephens/waterme/internal/tui/components/vessels"
	"github.com/julianstephens/waterme/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateAddVessel, StateEditVessel:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case applyMsg:
		msg.fn()
		m.syncFromProjection()
		return m, nil

	case tickMsg:
		now := m.localNow()
		if !utils.IsSameDay(m.lastDay, now) {
			m.lastDay = now
			m.gedeg.Tick()
		}
		m.refreshPlan(now)
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := msg.Height - 6
		m.garden.SetSize(msg.Width-4, h)
		m.vesselList.SetSize(msg.Width-4, h)
		m.planModel.SetSize(msg.Width-4, h)
		return m, nil

	case garden.PerformMsg:
		if err := m.store.AppendPerform([]string{msg.ID}, m.localNow()); err != nil {
			m.status = "failed to mark done: " + err.Error()
		} else {
			m.status = ""
		}
		return m, nil

	case vessels.AddVesselMsg:
		m.vesselForm = &VesselFormModel{Kind: models.KindWater, Interval: strconv.Itoa(constants.DefaultInterval)}
		m.form = NewVesselForm(m.vesselForm)
		m.previousState = m.state
		m.state = StateAddVessel
		return m, m.form.Init()

	case vessels.EditVesselMsg:
		v := msg.Vessel
		m.editingVessel = &v
		m.vesselForm = &VesselFormModel{Name: v.DisplayName}
		m.form = NewRenameForm(m.vesselForm)
		m.previousState = m.state
		m.state = StateEditVessel
		return m, m.form.Init()

	case vessels.DeleteVesselMsg:
		m.vesselToDeleteID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case m.state == StateGarden && key.Matches(msg, m.keys.Refresh):
			// re-observing resubscribes after an error
			m.status = ""
			m.gedeg.SetObserver(nil)
			m.observe()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateGarden:
		m.garden, cmd = m.garden.Update(msg)
	case StateVessels:
		m.vesselList, cmd = m.vesselList.Update(msg)
	case StatePlan:
		m.planModel, cmd = m.planModel.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(applyMsg); ok {
		// keep following the projection while a form is open
		msg.fn()
		m.syncFromProjection()
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var err error
		if m.state == StateAddVessel {
			err = m.saveNewVessel()
		} else {
			m.editingVessel.DisplayName = strings.TrimSpace(m.vesselForm.Name)
			err = m.store.UpdateVessel(*m.editingVessel)
		}
		if err != nil {
			m.status = err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.status = ""
		m.editingVessel = nil
		m.state = m.previousState
		m.syncFromProjection()
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m Model) saveNewVessel() error {
	interval, err := strconv.Atoi(strings.TrimSpace(m.vesselForm.Interval))
	if err != nil {
		return err
	}
	v := models.NewVessel(strings.TrimSpace(m.vesselForm.Name))
	v.CreatedAt = m.now()
	r := models.NewReminder(v.ID, models.ReminderKind{Type: m.vesselForm.Kind})
	r.IntervalDays = models.ClampInterval(interval)
	r.CreatedAt = v.CreatedAt
	return m.store.AddVessel(v, r)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case applyMsg:
		msg.fn()
		m.syncFromProjection()
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			if m.vesselToDeleteID != "" {
				if err := m.store.DeleteVessel(m.vesselToDeleteID); err != nil {
					m.status = "failed to delete plant: " + err.Error()
				}
				m.vesselToDeleteID = ""
			}
			m.state = m.previousState
			m.syncFromProjection()
		case "n", "N", "esc", "q":
			m.vesselToDeleteID = ""
			m.state = m.previousState
		}
	}
	return m, nil
}
