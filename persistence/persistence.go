// Package persistence defines the key-addressed event blob storage
// capability the Dispatcher syncs the queue against, plus in-memory and
// file-backed default implementations.
package persistence

import "context"

// Event is the minimal shape a Persistence adapter stores. It mirrors
// telemetry.Event's wire-visible fields, including the unexported
// retry counter (serialized here, unlike the wire format, since a
// crash-restarted process must not forget how many times an event has
// already been attempted).
type Event struct {
	Name      string            `cbor:"name"`
	Payload   map[string]any    `cbor:"payload,omitempty"`
	IssuedAt  int64             `cbor:"issuedAt"`
	SessionID string            `cbor:"sessionId,omitempty"`
	Metadata  map[string]string `cbor:"metadata,omitempty"`
	Platform  *Platform         `cbor:"platform,omitempty"`
	Attempts  int               `cbor:"attempts"`
}

// Platform mirrors telemetry.Platform for persisted storage.
type Platform struct {
	Kind    string `cbor:"kind"`
	Browser string `cbor:"browser,omitempty"`
	Device  string `cbor:"device,omitempty"`
	OS      string `cbor:"os,omitempty"`
}

// Persistence is the capability set the Dispatcher syncs the in-memory
// queue against: {save(events), load() -> events, clear()}. All three
// operations must be idempotent, and Save must atomically replace the
// whole slot; partial writes are forbidden. A Save call may return a
// *QuotaError, in which case the adapter must already have reduced its
// payload to whatever it could fit and report the saved/dropped split
// through it.
type Persistence interface {
	Save(ctx context.Context, events []Event) error
	Load(ctx context.Context) ([]Event, error)
	Clear(ctx context.Context) error
}

// QuotaError is returned by Save when the adapter ran out of storage
// quota. The adapter is expected to have already saved a reduced-size
// prefix (dropping oldest) before returning this.
type QuotaError struct {
	Saved   int
	Dropped int
}

func (e *QuotaError) Error() string {
	return "persistence: quota exceeded"
}
