// Package debounce collapses bursts of change signals into a single
// recompute once a quiet period has passed.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn after the quiet period has elapsed since the last
// Trigger. Runs never overlap; triggers that arrive while fn is running
// collapse into exactly one follow-up run.
type Debouncer struct {
	quiet time.Duration
	fn    func()

	mu      sync.Mutex
	idle    *sync.Cond
	timer   *time.Timer
	gen     uint64 // bumped whenever the armed timer is superseded
	pending bool
	running bool
	rerun   bool
	closed  bool
}

func New(quiet time.Duration, fn func()) *Debouncer {
	d := &Debouncer{quiet: quiet, fn: fn}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger records a change. It never blocks on fn.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.running {
		d.rerun = true
		return
	}
	d.armLocked()
}

func (d *Debouncer) armLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.runLocked()
}

// runLocked is entered with mu held and returns with it released.
func (d *Debouncer) runLocked() {
	d.running = true
	d.mu.Unlock()

	d.fn()

	d.mu.Lock()
	d.running = false
	if d.rerun && !d.closed {
		d.rerun = false
		d.armLocked()
	}
	d.idle.Broadcast()
	d.mu.Unlock()
}

// Flush runs a pending recompute immediately on the calling goroutine. It
// reports whether anything ran; with nothing pending it is a no-op.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.closed || !d.pending || d.running {
		d.mu.Unlock()
		return false
	}
	d.timer.Stop()
	d.gen++
	d.pending = false
	d.runLocked()
	return true
}

// Pending reports whether a recompute is armed or queued behind a running one.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending || d.rerun
}

// Close cancels any armed timer and waits for a running recompute to
// finish. Nothing runs after Close returns. It must not be called from fn.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.pending = false
	d.rerun = false
	if d.timer != nil {
		d.timer.Stop()
	}
	for d.running {
		d.idle.Wait()
	}
}
