// Package telemetry implements the core event-dispatch engine of a
// client-side telemetry SDK: a buffered, batched, retrying, persisted
// event pipeline delivered over an injected transport with at-least-
// once semantics.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/beacontrail/telemetry-go/session"
)

// Client is the public Facade: a thin parameter-marshalling layer over
// the Dispatcher that also owns pre-init deferral and the
// MetadataManager.
type Client struct {
	dispatcher *Dispatcher
	metadata   *MetadataManager
	sessions   *session.Manager // only set when the caller didn't supply Config.SessionProvider

	cfg Config

	deferMu  sync.Mutex
	ready    bool
	deferred []deferredTrack
}

type deferredTrack struct {
	metadata map[string]string
	name     string
	payload  map[string]any
}

// New validates cfg, applies defaults, and constructs a Client in the
// Uninitialized state. A *ConfigError is returned synchronously if cfg
// is invalid.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	metadata := NewMetadataManager()
	cfg.MetadataProvider = func(overrides map[string]string) map[string]string {
		snap := metadata.Snapshot()
		for k, v := range overrides {
			snap[k] = v
		}
		return snap
	}

	var sessions *session.Manager
	if cfg.SessionProvider == nil {
		sessions = session.NewManager(30 * time.Minute)
		cfg.SessionProvider = sessions.CurrentSessionID
	}
	if cfg.PlatformProvider == nil {
		cfg.PlatformProvider = func() *Platform {
			return &Platform{Kind: PlatformServer}
		}
	}

	c := &Client{
		dispatcher: NewDispatcher(cfg),
		metadata:   metadata,
		sessions:   sessions,
		cfg:        cfg,
	}
	return c, nil
}

// Init starts the dispatcher and replays any operations deferred before
// it reached Running, in the order they were originally received. It is
// idempotent and legal after Dispose.
func (c *Client) Init(ctx context.Context) error {
	if err := c.dispatcher.Init(ctx); err != nil {
		return err
	}

	c.deferMu.Lock()
	defer c.deferMu.Unlock()
	c.ready = true
	for _, op := range c.deferred {
		_ = c.dispatcher.Enqueue(op.metadata, op.name, op.payload)
	}
	c.deferred = nil
	return nil
}

// Track records an event. Before Init completes, calls are buffered in
// an ordered deferred-ops list and replayed on Init; this call never
// blocks and never returns a LifecycleError for calling it pre-init --
// auto-queueing is more robust than forcing every caller to sequence
// their first Track calls after Init.
func (c *Client) Track(name string, payload map[string]any, metadataOverrides map[string]string) error {
	c.deferMu.Lock()
	if !c.ready {
		c.deferred = append(c.deferred, deferredTrack{metadata: metadataOverrides, name: name, payload: payload})
		c.deferMu.Unlock()
		return nil
	}
	c.deferMu.Unlock()
	return c.dispatcher.Enqueue(metadataOverrides, name, payload)
}

// SetMetadata delegates directly to the MetadataManager and is legal at
// all times, including pre-init and post-dispose.
func (c *Client) SetMetadata(key, value string) {
	c.metadata.Set(key, value)
}

// GetMetadata returns a snapshot of the current global metadata.
func (c *Client) GetMetadata() map[string]string {
	return c.metadata.Snapshot()
}

// GetSessionID returns the session probe's current value, or "" if
// absent.
func (c *Client) GetSessionID() string {
	if c.cfg.SessionProvider == nil {
		return ""
	}
	return c.cfg.SessionProvider()
}

// Flush completes when one flush cycle finishes. Calling it before
// Init completes is a no-op that returns success.
func (c *Client) Flush(ctx context.Context) error {
	c.deferMu.Lock()
	ready := c.ready
	c.deferMu.Unlock()
	if !ready {
		return nil
	}
	return c.dispatcher.Flush(ctx)
}

// Dispose is synchronous from the caller's perspective: it waits for
// the dispatcher's in-flight flush (if any) to finish applying its
// outcome before returning. Subsequent Track calls buffer again, ready
// to replay on the next Init.
func (c *Client) Dispose() error {
	c.deferMu.Lock()
	c.ready = false
	c.deferMu.Unlock()
	return c.dispatcher.Dispose()
}
