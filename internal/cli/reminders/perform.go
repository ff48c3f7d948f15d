package reminders

import (
	"errors"
	"fmt"

	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/cli"
)

// PerformCmd marks reminders as done. All of them share one timestamp.
type PerformCmd struct {
	Reminders []string `arg:"" optional:"" help:"Reminder ids or id prefixes."`
	Due       bool     `help:"Perform every reminder that is late or due today."`
}

func (c *PerformCmd) Run(ctx *cli.Context) error {
	var ids []string
	for _, ref := range c.Reminders {
		r, err := ctx.ResolveReminder(ref)
		if err != nil {
			return err
		}
		ids = append(ids, r.ID)
	}
	if c.Due {
		g := ctx.OpenGarden()
		for _, k := range []bucket.Kind{bucket.Late, bucket.Today} {
			for _, r := range g.Section(k) {
				ids = append(ids, r.ID)
			}
		}
		g.Close()
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		if c.Due {
			fmt.Println("Nothing is due.")
			return nil
		}
		return errors.New("name at least one reminder or pass --due")
	}

	if err := ctx.Store.AppendPerform(ids, ctx.LocalNow()); err != nil {
		return fmt.Errorf("failed to perform reminders: %w", err)
	}
	fmt.Printf("Marked %d reminder(s) as done\n", len(ids))
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
