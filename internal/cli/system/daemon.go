package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/config"
	"github.com/julianstephens/waterme/internal/daemon"
	"github.com/julianstephens/waterme/internal/logger"
)

// DaemonCmd keeps notifications and the badge in step with the garden until
// interrupted.
type DaemonCmd struct {
	Verbose bool `short:"v" help:"Mirror info level logs to stderr."`
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Verbose || cfg.Debug {
		if err := logger.Init(logger.Config{
			Debug:     ctx.Debug || cfg.Debug,
			Verbose:   true,
			ConfigDir: cli.DataDir(ctx.Store),
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender, err := daemon.BuildSender(sigCtx, cfg.Notify)
	if err != nil {
		return err
	}
	if sender == nil {
		logger.Warn("No notification channel enabled, only the badge will be kept up to date")
	}

	d := daemon.New(ctx.Store, cfg, sender)
	if srv := d.Server(); srv != nil {
		fmt.Printf("Serving the garden API on %s\n", cfg.API.Listen)
	}
	return d.Run(sigCtx)
}
