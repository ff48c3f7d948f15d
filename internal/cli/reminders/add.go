package reminders

import (
	"fmt"
	"strings"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
)

type ReminderAddCmd struct {
	Vessel        string `arg:"" help:"Plant id, id prefix or name."`
	cli.KindFlags `embed:""`
	Every         int    `help:"Days between reminders." default:"7"`
	Note          string `help:"Free form note shown with the reminder."`
}

func (c *ReminderAddCmd) Run(ctx *cli.Context) error {
	v, err := ctx.ResolveVessel(c.Vessel)
	if err != nil {
		return err
	}
	kind, err := c.ReminderKind()
	if err != nil {
		return err
	}
	if c.Every < constants.MinimumInterval || c.Every > constants.MaximumInterval {
		return fmt.Errorf("--every must be between %d and %d days", constants.MinimumInterval, constants.MaximumInterval)
	}

	r := models.NewReminder(v.ID, kind)
	r.IntervalDays = c.Every
	r.Note = strings.TrimSpace(c.Note)
	r.CreatedAt = ctx.LocalNow()
	if err := ctx.Store.AddReminder(r); err != nil {
		return fmt.Errorf("failed to add reminder: %w", err)
	}
	fmt.Printf("Added %s reminder %s to %s\n", strings.ToLower(kind.DisplayName()), cli.ShortID(r.ID), v.Name())
	return nil
}
