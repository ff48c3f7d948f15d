package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const quiet = 30 * time.Millisecond

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDebouncer_BurstCollapsesToOne(t *testing.T) {
	var runs atomic.Int32
	d := New(quiet, func() { runs.Add(1) })
	defer d.Close()

	for i := 0; i < 20; i++ {
		d.Trigger()
	}
	waitFor(t, func() bool { return runs.Load() == 1 })
	time.Sleep(3 * quiet)
	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestDebouncer_SpacedTriggersRunEachTime(t *testing.T) {
	var runs atomic.Int32
	d := New(quiet, func() { runs.Add(1) })
	defer d.Close()

	for i := 1; i <= 3; i++ {
		d.Trigger()
		want := int32(i)
		waitFor(t, func() bool { return runs.Load() == want })
	}
}

func TestDebouncer_TriggerDuringRunSchedulesOneMore(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 10)
	var runs, concurrent, maxConcurrent atomic.Int32
	d := New(quiet, func() {
		n := concurrent.Add(1)
		if n > maxConcurrent.Load() {
			maxConcurrent.Store(n)
		}
		started <- struct{}{}
		if runs.Add(1) == 1 {
			<-release
		}
		concurrent.Add(-1)
	})
	defer d.Close()

	d.Trigger()
	<-started
	for i := 0; i < 5; i++ {
		d.Trigger()
	}
	if !d.Pending() {
		t.Error("expected a follow-up to be pending")
	}
	close(release)

	waitFor(t, func() bool { return runs.Load() == 2 })
	time.Sleep(3 * quiet)
	if got := runs.Load(); got != 2 {
		t.Errorf("runs = %d, want 2", got)
	}
	if maxConcurrent.Load() != 1 {
		t.Errorf("recomputes overlapped")
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var runs atomic.Int32
	d := New(time.Hour, func() { runs.Add(1) })
	defer d.Close()

	if d.Flush() {
		t.Error("Flush with nothing pending should not run")
	}
	d.Trigger()
	if !d.Flush() {
		t.Error("Flush should run the pending recompute")
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if d.Pending() {
		t.Error("nothing should be pending after Flush")
	}
}

func TestDebouncer_NoRunAfterClose(t *testing.T) {
	var runs atomic.Int32
	d := New(quiet, func() { runs.Add(1) })
	d.Trigger()
	d.Close()
	d.Trigger()

	time.Sleep(3 * quiet)
	if runs.Load() != 0 {
		t.Errorf("runs = %d after Close, want 0", runs.Load())
	}
	if d.Flush() {
		t.Error("Flush after Close should not run")
	}
}

func TestDebouncer_CloseWaitsForRunningRecompute(t *testing.T) {
	var mu sync.Mutex
	finished := false
	started := make(chan struct{})
	d := New(time.Millisecond, func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		finished = true
		mu.Unlock()
	})
	d.Trigger()
	<-started
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if !finished {
		t.Error("Close returned before the running recompute finished")
	}
}
