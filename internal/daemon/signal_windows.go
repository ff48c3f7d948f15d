//go:build windows

package daemon

import "context"

func flushOnSignal(ctx context.Context, flush func()) {
	<-ctx.Done()
}
