package system

import (
	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/mcpserver"
	"github.com/julianstephens/waterme/internal/source"
)

// McpCmd serves the garden to MCP clients over stdio.
type McpCmd struct{}

func (c *McpCmd) Run(ctx *cli.Context) error {
	col := source.New(ctx.Store)
	defer col.Close()

	srv := mcpserver.New(ctx.Store, col)
	defer srv.Close()
	return srv.ServeStdio()
}
