package plans

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/notifications"
)

// PlanCmd previews the notifications the daemon would schedule right now.
type PlanCmd struct{}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		fmt.Println("Notifications are turned off. Enable them with 'waterme settings --notifications-enabled'.")
		return nil
	}

	g := ctx.OpenGarden()
	defer g.Close()
	plan := notifications.BuildPlan(g.Col.Snapshot(), g.Col, notifications.ConfigFromSettings(settings), ctx.LocalNow(), nil)
	if len(plan) == 0 {
		fmt.Println("Nothing to notify about.")
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 60
	tbl.AddRow("FIRES", "DUE", "MESSAGE")
	for _, e := range plan {
		when := e.FireAt.Format("Mon Jan 2 15:04")
		body := notifications.Body(e)
		if e.IsImmediate {
			when = "now"
		}
		if body == "" {
			body = "(badge only)"
		}
		tbl.AddRow(when, e.ItemCount, body)
	}
	fmt.Println(tbl)
	return nil
}

// BadgeCmd prints how many reminders are due by the end of today.
type BadgeCmd struct{}

func (c *BadgeCmd) Run(ctx *cli.Context) error {
	g := ctx.OpenGarden()
	defer g.Close()
	fmt.Println(notifications.BadgeCount(g.Col.Snapshot(), ctx.LocalNow()))
	return nil
}
