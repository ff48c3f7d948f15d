package vessels

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/models"
)

type VesselListCmd struct{}

func (c *VesselListCmd) Run(ctx *cli.Context) error {
	vessels, err := ctx.Store.GetAllVessels()
	if err != nil {
		return fmt.Errorf("failed to list plants: %w", err)
	}
	if len(vessels) == 0 {
		fmt.Println("No plants yet. Add one with 'waterme vessel add'.")
		return nil
	}
	reminders, err := ctx.Store.GetAllReminders()
	if err != nil {
		return fmt.Errorf("failed to list reminders: %w", err)
	}
	byID := make(map[string]models.Reminder, len(reminders))
	for _, r := range reminders {
		byID[r.ID] = r
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow("ID", "", "PLANT", "REMINDERS")
	for _, v := range vessels {
		var tasks []string
		for _, id := range v.ReminderIDs {
			if r, ok := byID[id]; ok {
				tasks = append(tasks, fmt.Sprintf("%s/%dd", strings.ToLower(r.Kind.DisplayName()), r.IntervalDays))
			}
		}
		tbl.AddRow(cli.ShortID(v.ID), icon(v), v.Name(), strings.Join(tasks, ", "))
	}
	fmt.Println(tbl)
	return nil
}

func icon(v models.Vessel) string {
	if v.Icon.Kind == models.IconImage {
		return "🖼"
	}
	return v.Icon.Emoji
}
