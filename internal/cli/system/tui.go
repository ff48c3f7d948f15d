package system

import (
	"context"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	col := source.New(ctx.Store)
	defer col.Close()
	return tui.Run(context.Background(), ctx.Store, col)
}
