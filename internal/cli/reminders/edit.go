package reminders

import (
	"fmt"
	"strings"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
)

type ReminderEditCmd struct {
	Reminder string  `arg:"" help:"Reminder id or id prefix."`
	Every    *int    `help:"Days between reminders. The next date moves at once."`
	Note     *string `help:"Replace the note."`
	Enable   bool    `help:"Turn the reminder back on." xor:"toggle"`
	Disable  bool    `help:"Stop the reminder without deleting its history." xor:"toggle"`
}

func (c *ReminderEditCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveReminder(c.Reminder)
	if err != nil {
		return err
	}

	updated := false
	if c.Every != nil {
		if *c.Every < constants.MinimumInterval || *c.Every > constants.MaximumInterval {
			return fmt.Errorf("--every must be between %d and %d days", constants.MinimumInterval, constants.MaximumInterval)
		}
		r.IntervalDays = *c.Every
		updated = true
	}
	if c.Note != nil {
		r.Note = strings.TrimSpace(*c.Note)
		updated = true
	}
	if c.Enable || c.Disable {
		r.IsEnabled = c.Enable
		updated = true
	}
	if !updated {
		fmt.Println("No changes specified. Use --every, --note, --enable or --disable.")
		return nil
	}

	if err := ctx.Store.UpdateReminder(r); err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	fmt.Printf("Updated reminder %s\n", describe(r))
	return nil
}

func describe(r models.Reminder) string {
	return fmt.Sprintf("%s (%s, every %d days)", cli.ShortID(r.ID), strings.ToLower(r.Kind.DisplayName()), r.IntervalDays)
}
