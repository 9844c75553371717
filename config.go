package telemetry

import (
	"strings"
	"time"

	"github.com/beacontrail/telemetry-go/logging"
	"github.com/beacontrail/telemetry-go/persistence"
	"github.com/beacontrail/telemetry-go/transport"
)

// Defaults applied by withDefaults for any zero-valued field, except
// MaxRetries, which takes DefaultMaxRetries only when negative (0 means
// no retries).
const (
	DefaultAPIKeyHeader  = "X-API-Key"
	DefaultFlushInterval = 5000 * time.Millisecond
	DefaultMaxBatchSize  = 10
	DefaultMaxRetries    = 3
)

// Config is immutable after construction; New applies defaults and
// validates it once.
type Config struct {
	APIKey   string
	Endpoint string

	APIKeyHeader string
	// FlushInterval is the period of the scheduled flush timer.
	FlushInterval time.Duration
	// MaxBatchSize caps how many events a single flush sends.
	MaxBatchSize int
	// MaxBufferSize caps the in-memory queue; 0 means unbounded.
	MaxBufferSize int
	// MaxRetries caps how many times a retryable failure is retried
	// before an event is dropped as a terminal failure.
	MaxRetries int

	Transport   transport.Transport
	Persistence persistence.Persistence
	Logger      logging.Logger

	// MetadataProvider returns the current metadata snapshot merged
	// with any per-call overrides; supplied by the Facade.
	MetadataProvider func(overrides map[string]string) map[string]string
	// SessionProvider returns the current session id, or "" if absent.
	SessionProvider func() string
	// PlatformProvider returns the current platform snapshot, or nil.
	PlatformProvider func() *Platform
}

// withDefaults returns a copy of c with defaults filled in for unset
// fields. It does not validate; New calls Validate before it.
func (c Config) withDefaults() Config {
	out := c
	if out.APIKeyHeader == "" {
		out.APIKeyHeader = DefaultAPIKeyHeader
	}
	if out.FlushInterval <= 0 {
		out.FlushInterval = DefaultFlushInterval
	}
	if out.MaxBatchSize <= 0 {
		out.MaxBatchSize = DefaultMaxBatchSize
	}
	if out.MaxRetries < 0 {
		out.MaxRetries = DefaultMaxRetries
	}
	if out.Persistence == nil {
		out.Persistence = persistence.NewMemory()
	}
	if out.Logger == nil {
		out.Logger = logging.NewConsoleLogger(logging.Warn, nil)
	}
	return out
}

// Validate checks the required fields and constraints, returning a
// *ConfigError describing the first violation found.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{Field: "APIKey", Message: "must not be empty"}
	}
	if c.Endpoint == "" {
		return &ConfigError{Field: "Endpoint", Message: "must not be empty"}
	}
	if !strings.HasPrefix(c.Endpoint, "https://") {
		return &ConfigError{Field: "Endpoint", Message: "must use the https scheme"}
	}
	if c.Transport == nil {
		return &ConfigError{Field: "Transport", Message: "must not be nil"}
	}
	if c.MaxBufferSize < 0 {
		return &ConfigError{Field: "MaxBufferSize", Message: "must be >= 0"}
	}
	return nil
}
