package vessels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/tui"
)

type VesselAddCmd struct {
	Name          string `arg:"" optional:"" help:"Plant name. Leave empty for an untitled plant."`
	cli.KindFlags `embed:""`
	Every         int    `help:"Days between reminders." default:"7"`
	Emoji         string `help:"Emoji shown next to the plant."`
	Interactive   bool   `short:"i" help:"Fill in the plant with a form."`
}

func (c *VesselAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		if err := c.ask(); err != nil {
			return err
		}
	}

	kind, err := c.ReminderKind()
	if err != nil {
		return err
	}
	if c.Every < constants.MinimumInterval || c.Every > constants.MaximumInterval {
		return fmt.Errorf("--every must be between %d and %d days", constants.MinimumInterval, constants.MaximumInterval)
	}

	now := ctx.LocalNow()
	v := models.NewVessel(strings.TrimSpace(c.Name))
	v.CreatedAt = now
	if c.Emoji != "" {
		v.Icon.Emoji = c.Emoji
	}
	r := models.NewReminder(v.ID, kind)
	r.IntervalDays = c.Every
	r.CreatedAt = now

	if err := ctx.Store.AddVessel(v, r); err != nil {
		return fmt.Errorf("failed to add plant: %w", err)
	}
	fmt.Printf("Added plant %s (%s) with a %s reminder every %d days\n",
		v.Name(), cli.ShortID(v.ID), strings.ToLower(kind.DisplayName()), r.IntervalDays)
	return nil
}

// ask runs the same form the TUI shows and copies the answers back.
func (c *VesselAddCmd) ask() error {
	fm := &tui.VesselFormModel{
		Name:     c.Name,
		Kind:     models.KindType(strings.ToLower(c.Kind)),
		Interval: strconv.Itoa(c.Every),
	}
	if err := tui.NewVesselForm(fm).Run(); err != nil {
		return err
	}
	every, err := strconv.Atoi(strings.TrimSpace(fm.Interval))
	if err != nil {
		return fmt.Errorf("invalid interval %q", fm.Interval)
	}
	c.Name, c.Kind, c.Every = fm.Name, string(fm.Kind), every
	return nil
}
