package persistence

import (
	"context"
	"sync"
)

// Memory is the zero-value-usable Persistence default: an in-process
// slot that does not survive a process restart. It exists mainly for
// tests and for callers who accept that pending events are lost on
// crash, trading durability for zero setup.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory returns an empty Memory adapter.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make([]Event, len(events))
	copy(snap, events)
	m.events = snap
	return nil
}

func (m *Memory) Load(_ context.Context) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	return nil
}
