package vessels

import (
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/config"
	"github.com/julianstephens/waterme/internal/iconstore"
	"github.com/julianstephens/waterme/internal/models"
)

type VesselEditCmd struct {
	Vessel string  `arg:"" help:"Plant id, id prefix or name."`
	Name   *string `help:"New name. An empty name makes the plant untitled."`
	Emoji  string  `help:"Use this emoji as the icon."`
	Image  string  `help:"Use this image file as the icon." type:"existingfile"`
}

func (c *VesselEditCmd) Run(ctx *cli.Context) error {
	if c.Emoji != "" && c.Image != "" {
		return fmt.Errorf("--emoji and --image cannot be combined")
	}
	v, err := ctx.ResolveVessel(c.Vessel)
	if err != nil {
		return err
	}

	updated := false
	if c.Name != nil {
		v.DisplayName = strings.TrimSpace(*c.Name)
		updated = true
	}
	if c.Emoji != "" {
		v.Icon = models.VesselIcon{Kind: models.IconEmoji, Emoji: c.Emoji}
		updated = true
	}
	if c.Image != "" {
		if err := c.storeImage(ctx, v.ID); err != nil {
			return err
		}
		v.Icon = models.VesselIcon{Kind: models.IconImage}
		updated = true
	}
	if !updated {
		fmt.Println("No changes specified. Use --name, --emoji or --image.")
		return nil
	}

	if err := ctx.Store.UpdateVessel(v); err != nil {
		return fmt.Errorf("failed to update plant: %w", err)
	}
	fmt.Printf("Updated plant %s (%s)\n", v.Name(), cli.ShortID(v.ID))
	return nil
}

func (c *VesselEditCmd) storeImage(ctx *cli.Context, id string) error {
	icons, err := openIcons(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.Image)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return icons.Put(id, data)
}

func openIcons(ctx *cli.Context) (*iconstore.Store, error) {
	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.API.IconDir == "" {
		return nil, fmt.Errorf("api.icon_dir is not configured")
	}
	return iconstore.New(cfg.API.IconDir), nil
}
