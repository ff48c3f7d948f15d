// Package observe provides subscription tokens, a typed publisher and a
// serial dispatch queue shared by the live data pipeline.
package observe

import "sync"

// Token is a handle to a subscription. Invalidate releases it; calling it
// more than once has no further effect.
type Token interface {
	Invalidate()
}

type funcToken struct {
	once sync.Once
	fn   func()
}

// NewToken returns a token that runs fn the first time it is invalidated.
func NewToken(fn func()) Token {
	return &funcToken{fn: fn}
}

func (t *funcToken) Invalidate() {
	t.once.Do(func() {
		if t.fn != nil {
			t.fn()
		}
	})
}

// Composite owns several tokens and invalidates them in the order they were added.
type Composite struct {
	mu          sync.Mutex
	tokens      []Token
	invalidated bool
}

func NewComposite(tokens ...Token) *Composite {
	return &Composite{tokens: tokens}
}

// Add registers another token. A token added after invalidation is
// invalidated immediately.
func (c *Composite) Add(t Token) {
	if t == nil {
		return
	}
	c.mu.Lock()
	if c.invalidated {
		c.mu.Unlock()
		t.Invalidate()
		return
	}
	c.tokens = append(c.tokens, t)
	c.mu.Unlock()
}

func (c *Composite) Invalidate() {
	c.mu.Lock()
	if c.invalidated {
		c.mu.Unlock()
		return
	}
	c.invalidated = true
	tokens := c.tokens
	c.tokens = nil
	c.mu.Unlock()

	for _, t := range tokens {
		t.Invalidate()
	}
}

// Invalidated reports whether Invalidate has been called.
func (c *Composite) Invalidated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}
