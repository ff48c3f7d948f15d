package reminders

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/models"
)

// ReminderListCmd prints every reminder, disabled ones included, in due order.
type ReminderListCmd struct {
	Vessel string `help:"Only list reminders of this plant."`
}

func (c *ReminderListCmd) Run(ctx *cli.Context) error {
	reminders, err := ctx.Store.GetAllReminders()
	if err != nil {
		return fmt.Errorf("failed to list reminders: %w", err)
	}
	vessels, err := ctx.Store.GetAllVessels()
	if err != nil {
		return fmt.Errorf("failed to list plants: %w", err)
	}
	names := make(map[string]string, len(vessels))
	for _, v := range vessels {
		names[v.ID] = v.Name()
	}

	if c.Vessel != "" {
		v, err := ctx.ResolveVessel(c.Vessel)
		if err != nil {
			return err
		}
		var only []models.Reminder
		for _, r := range reminders {
			if r.VesselID == v.ID {
				only = append(only, r)
			}
		}
		reminders = only
	}
	if len(reminders) == 0 {
		fmt.Println("No reminders found.")
		return nil
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	now := ctx.LocalNow()
	set := bucket.Compute(now, settings.FirstWeekday())

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow("ID", "PLANT", "TASK", "EVERY", "NEXT", "WHEN", "NOTE")
	for _, r := range reminders {
		when := set.Of(r.DueDate(now)).String()
		if !r.IsEnabled {
			when = "disabled"
		}
		tbl.AddRow(cli.ShortID(r.ID), names[r.VesselID], r.Kind.DisplayName(),
			fmt.Sprintf("%dd", r.IntervalDays), cli.FormatDue(r), when, r.Note)
	}
	fmt.Println(tbl)
	return nil
}
