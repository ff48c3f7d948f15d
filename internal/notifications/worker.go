package notifications

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/observe"
)

// Worker runs notification jobs one at a time. Every job that touches the
// notification center or the badge goes through the same worker.
type Worker struct {
	queue   *observe.Queue
	timeout time.Duration
	log     *log.Logger
}

func NewWorker(timeout time.Duration, l *log.Logger) *Worker {
	if l == nil {
		l = logger.For("notifications")
	}
	return &Worker{queue: observe.NewQueue(), timeout: timeout, log: l}
}

// guard is a single slot: a job guarded by it is dropped while a previous
// one is still queued or running.
type guard struct {
	busy atomic.Bool
}

// submit queues job with a deadline. It reports false when the job was
// dropped, either because g is busy or the worker is closed.
func (w *Worker) submit(name string, g *guard, job func(ctx context.Context) error) bool {
	if g != nil && !g.busy.CompareAndSwap(false, true) {
		w.log.Info("run already in progress, dropping trigger", "task", name)
		return false
	}
	ok := w.queue.Dispatch(func() {
		if g != nil {
			defer g.busy.Store(false)
		}
		w.run(context.Background(), name, job)
	})
	if !ok && g != nil {
		g.busy.Store(false)
	}
	return ok
}

// submitWait is submit that also waits for the job to finish.
func (w *Worker) submitWait(name string, g *guard, job func(ctx context.Context) error) bool {
	done := make(chan struct{})
	ok := w.submit(name, g, func(ctx context.Context) error {
		defer close(done)
		return job(ctx)
	})
	if ok {
		<-done
	}
	return ok
}

// do runs job on the worker and waits for its result. The job's context is
// also cancelled with ctx.
func (w *Worker) do(ctx context.Context, name string, job func(ctx context.Context) error) error {
	done := make(chan error, 1)
	if !w.queue.Dispatch(func() { done <- w.run(ctx, name, job) }) {
		return errors.New("notification worker is closed")
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run(parent context.Context, name string, job func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		w.log.Warn("task timed out", "task", name, "timeout", w.timeout)
	case err != nil:
		w.log.Error("task failed", "task", name, "err", err)
	default:
		w.log.Debug("task finished", "task", name, "took", time.Since(start))
	}
	return err
}

// Sync waits for every job queued before the call.
func (w *Worker) Sync() {
	w.queue.Sync()
}

// Close lets queued jobs finish and stops the worker.
func (w *Worker) Close() {
	w.queue.Close()
}
