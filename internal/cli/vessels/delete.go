package vessels

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/models"
)

type VesselDeleteCmd struct {
	Vessel string `arg:"" help:"Plant id, id prefix or name."`
	Yes    bool   `short:"y" help:"Delete without asking for confirmation."`
}

func (c *VesselDeleteCmd) Run(ctx *cli.Context) error {
	v, err := ctx.ResolveVessel(c.Vessel)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s and its %d reminder(s)?", v.Name(), len(v.ReminderIDs))).
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteVessel(v.ID); err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}
	if v.Icon.Kind == models.IconImage {
		if icons, err := openIcons(ctx); err == nil {
			if err := icons.Delete(v.ID); err != nil {
				logger.Warn("failed to delete icon image", "vessel", v.ID, "error", err)
			}
		}
	}
	fmt.Printf("Deleted plant %s\n", v.Name())
	return nil
}
