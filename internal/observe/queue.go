package observe

import "sync"

// Queue runs submitted functions one at a time, in submission order, on a
// single goroutine. Dispatch never blocks the caller.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	done    chan struct{}
}

func NewQueue() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Dispatch enqueues fn. It reports false if the queue is closed.
func (q *Queue) Dispatch(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.pending = append(q.pending, fn)
	q.cond.Signal()
	return true
}

// Close stops accepting work, lets already queued work finish and waits
// for the worker to exit. It must not be called from a queued function.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Signal()
	}
	q.mu.Unlock()
	<-q.done
}

// Sync blocks until everything queued before the call has run.
func (q *Queue) Sync() {
	ch := make(chan struct{})
	if !q.Dispatch(func() { close(ch) }) {
		return
	}
	<-ch
}

func (q *Queue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}
