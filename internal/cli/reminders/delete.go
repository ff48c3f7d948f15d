package reminders

import (
	"errors"
	"fmt"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/storage"
)

type ReminderDeleteCmd struct {
	Reminder string `arg:"" help:"Reminder id or id prefix."`
}

func (c *ReminderDeleteCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveReminder(c.Reminder)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteReminder(r.ID); err != nil {
		if errors.Is(err, storage.ErrLastReminder) {
			return fmt.Errorf("%w, delete the plant instead", err)
		}
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	fmt.Printf("Deleted reminder %s\n", describe(r))
	return nil
}
