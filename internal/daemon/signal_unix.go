//go:build !windows

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// flushOnSignal runs flush for every SIGUSR1 until ctx is done.
func flushOnSignal(ctx context.Context, flush func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	defer signal.Stop(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			flush()
		}
	}
}
