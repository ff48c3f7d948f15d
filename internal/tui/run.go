package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage"
)

// Run starts the interactive UI and blocks until it exits. Projection
// updates are delivered through the program so they are applied between
// renders.
func Run(ctx context.Context, store storage.Provider, col *source.Collection) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	m := NewModel(store, col, WithDispatcher(func(fn func()) {
		p.Send(applyMsg{fn: fn})
	}))
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	defer m.Close()

	// pick up writes made by the daemon or another CLI invocation
	if feed, err := store.Watch(ctx); err == nil {
		go col.Follow(ctx, feed)
	}

	_, err := p.Run()
	return err
}
