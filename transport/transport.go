// Package transport defines the Transport capability the Dispatcher
// invokes to deliver a batch, plus a default HTTP implementation.
package transport

import "context"

// Response is the shape the Dispatcher classifies outcomes from. Data
// is opaque and never inspected by the core. There is deliberately no
// "ok" boolean field: classification is derived purely from Status, so
// there is only one source of truth for whether a batch succeeded.
type Response struct {
	Status int
	Data   any
}

// Event is the minimal shape a Transport needs to serialize a batch.
// It mirrors telemetry.Event's wire-visible fields without importing
// the root package (which itself depends on transport.Transport),
// avoiding an import cycle.
type Event struct {
	Name      string         `json:"name"`
	Payload   map[string]any `json:"payload,omitempty"`
	IssuedAt  int64          `json:"issuedAt"`
	SessionID string         `json:"sessionId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Platform  *Platform      `json:"platform,omitempty"`
}

// Platform mirrors telemetry.Platform for wire serialization.
type Platform struct {
	Kind    string `json:"kind"`
	Browser string `json:"browser,omitempty"`
	Device  string `json:"device,omitempty"`
	OS      string `json:"os,omitempty"`
}

// Transport is the capability set the Dispatcher uses to deliver a
// batch: {send(batch, endpoint, headers) -> response-or-error}.
type Transport interface {
	Send(ctx context.Context, batch []Event, endpoint, apiKeyHeader, apiKey string) (Response, error)
}
