package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
)

func validateInterval(s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("interval must be a number of days")
	}
	if i < constants.MinimumInterval || i > constants.MaximumInterval {
		return fmt.Errorf("interval must be between %d and %d days", constants.MinimumInterval, constants.MaximumInterval)
	}
	return nil
}

func kindOptions() []huh.Option[models.KindType] {
	opts := make([]huh.Option[models.KindType], len(models.KindTypes))
	for i, k := range models.KindTypes {
		opts[i] = huh.NewOption(models.ReminderKind{Type: k}.DisplayName(), k)
	}
	return opts
}

// NewVesselForm asks for a plant and its first reminder.
func NewVesselForm(fm *VesselFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Leave empty for an untitled plant").
				Value(&fm.Name),
			huh.NewSelect[models.KindType]().
				Title("First reminder").
				Options(kindOptions()...).
				Value(&fm.Kind),
			huh.NewInput().
				Title("Every (days)").
				Value(&fm.Interval).
				Validate(validateInterval),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRenameForm edits the display name of a plant.
func NewRenameForm(fm *VesselFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name),
		),
	).WithTheme(huh.ThemeDracula())
}
