// Package session provides a default session-probe implementation: a
// session id that rotates after a period of caller inactivity. The
// core treats session/platform probes as injected capabilities; this is
// one reasonable default for callers who don't have a runtime-specific
// notion of session already.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const sessionCacheKey = "session-id"

// Manager hands out a session id that survives as long as Touch is
// called at least once per inactivityWindow, and rotates to a fresh id
// once the window lapses. Expiry bookkeeping is delegated to
// patrickmn/go-cache's single-entry TTL rather than a hand-rolled
// timer, since that is exactly the problem go-cache solves.
type Manager struct {
	mu     sync.Mutex
	cache  *gocache.Cache
	window time.Duration
}

// NewManager returns a Manager that rotates the session id after
// inactivityWindow with no Touch calls.
func NewManager(inactivityWindow time.Duration) *Manager {
	return &Manager{
		cache:  gocache.New(inactivityWindow, inactivityWindow/2),
		window: inactivityWindow,
	}
}

// CurrentSessionID returns the session probe's current value, creating
// one if none exists yet or the prior one expired. It always returns a
// present value; an absent session id is only possible for a caller
// whose runtime has no notion of session at all and supplies its own
// SessionProvider instead of this default.
func (m *Manager) CurrentSessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache.Get(sessionCacheKey); ok {
		m.cache.Set(sessionCacheKey, v, m.window)
		return v.(string)
	}
	id := uuid.NewString()
	m.cache.Set(sessionCacheKey, id, m.window)
	return id
}

// Touch refreshes the session's expiry without changing its value,
// equivalent to calling CurrentSessionID and discarding the result.
func (m *Manager) Touch() { m.CurrentSessionID() }
