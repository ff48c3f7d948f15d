package plans

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/cli"
)

// GardenCmd prints the reminders grouped by how soon they are due.
type GardenCmd struct {
	All bool `help:"Include the Tomorrow, This Week and Later sections."`
}

func (c *GardenCmd) Run(ctx *cli.Context) error {
	g := ctx.OpenGarden()
	defer g.Close()

	kinds := []bucket.Kind{bucket.Late, bucket.Today}
	if c.All {
		kinds = bucket.All[:]
	}

	empty := true
	for _, k := range kinds {
		rows := g.Section(k)
		if len(rows) == 0 {
			continue
		}
		if !empty {
			fmt.Println()
		}
		empty = false

		fmt.Printf("%s (%d)\n", k, len(rows))
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, r := range rows {
			tbl.AddRow("  "+cli.ShortID(r.ID), g.Col.VesselName(r.VesselID), r.Kind.DisplayName(), cli.FormatDue(r))
		}
		fmt.Println(tbl)
	}
	if empty {
		fmt.Println("Nothing needs attention. 🌿")
	}
	return nil
}
