package observe

import (
	"sync"
	"sync/atomic"
)

type subscriber[T any] struct {
	id     uint64
	fn     func(T)
	active atomic.Bool
}

// Notifier fans values out to subscribers in subscription order. Handlers
// run on the goroutine calling Emit.
type Notifier[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []*subscriber[T]
}

// Subscribe registers fn and returns the token that removes it. Once the
// token is invalidated fn is not called again, although a call that is
// already running is allowed to finish.
func (n *Notifier[T]) Subscribe(fn func(T)) Token {
	n.mu.Lock()
	n.nextID++
	s := &subscriber[T]{id: n.nextID, fn: fn}
	s.active.Store(true)
	n.subs = append(n.subs, s)
	n.mu.Unlock()

	return NewToken(func() {
		s.active.Store(false)
		n.remove(s.id)
	})
}

func (n *Notifier[T]) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers v to every active subscriber.
func (n *Notifier[T]) Emit(v T) {
	n.mu.Lock()
	subs := make([]*subscriber[T], len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		if s.active.Load() {
			s.fn(v)
		}
	}
}

// Len returns the number of active subscribers.
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
