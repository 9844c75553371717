package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/beacontrail/telemetry-go/logging"
)

// HTTPTransport is the default Transport, delivering batches as a JSON
// POST. It is grounded on ldevents.sendEventsTask.postEvents: a single
// attempt per call (batch-level retry is the Dispatcher's job, not the
// HTTP client's), a per-request payload identifier header, and a
// connection-pooled client built the way retryablehttp constructs one.
type HTTPTransport struct {
	client  *http.Client
	log     logging.Logger
	timeout time.Duration
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithTimeout sets the per-request timeout. The Dispatcher imposes no
// transport timeout of its own; this is where one lives.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTransport) { t.timeout = d }
}

// WithLogger sets the logger the transport reports request failures
// through at DEBUG (the Dispatcher does its own WARN/ERROR logging
// from the classified outcome).
func WithLogger(log logging.Logger) HTTPOption {
	return func(t *HTTPTransport) { t.log = log }
}

// NewHTTPTransport returns the default HTTP transport. retryablehttp is
// used only for its hardened *http.Client construction (dial/TLS
// timeouts, connection reuse); RetryMax is pinned to 0 because retry
// and backoff ownership belongs to the Dispatcher, not the HTTP client.
// CheckRetry never asks for a retry, so a response of any status is
// returned as is rather than turned into an error.
func NewHTTPTransport(opts ...HTTPOption) *HTTPTransport {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	rc.CheckRetry = func(context.Context, *http.Response, error) (bool, error) {
		return false, nil
	}

	t := &HTTPTransport{
		client:  rc.StandardClient(),
		log:     logging.Noop{},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, batch []Event, endpoint, apiKeyHeader, apiKey string) (Response, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return Response{}, fmt.Errorf("transport: marshal batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, apiKey)
	if id, err := uuid.NewRandom(); err == nil {
		req.Header.Set("X-Payload-Id", id.String())
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Debug("transport request failed", "endpoint", endpoint, "error", err)
		return Response{}, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var data any
	if resp.ContentLength != 0 {
		_ = json.NewDecoder(resp.Body).Decode(&data)
	}

	return Response{Status: resp.StatusCode, Data: data}, nil
}
