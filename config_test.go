package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beacontrail/telemetry-go/transport"
)

func TestConfigValidateRequiresAPIKey(t *testing.T) {
	cfg := Config{Endpoint: "https://example.test", Transport: &fakeTransport{}}
	var cerr *ConfigError
	require.ErrorAs(t, cfg.Validate(), &cerr)
	assert.Equal(t, "APIKey", cerr.Field)
}

func TestConfigValidateRequiresHTTPSEndpoint(t *testing.T) {
	cfg := Config{APIKey: "k", Endpoint: "http://example.test", Transport: &fakeTransport{}}
	var cerr *ConfigError
	require.ErrorAs(t, cfg.Validate(), &cerr)
	assert.Equal(t, "Endpoint", cerr.Field)
}

func TestConfigValidateRequiresTransport(t *testing.T) {
	cfg := Config{APIKey: "k", Endpoint: "https://example.test"}
	var cerr *ConfigError
	require.ErrorAs(t, cfg.Validate(), &cerr)
	assert.Equal(t, "Transport", cerr.Field)
}

func TestConfigValidateRejectsNegativeMaxBufferSize(t *testing.T) {
	cfg := Config{APIKey: "k", Endpoint: "https://example.test", Transport: &fakeTransport{}, MaxBufferSize: -1}
	var cerr *ConfigError
	require.ErrorAs(t, cfg.Validate(), &cerr)
	assert.Equal(t, "MaxBufferSize", cerr.Field)
}

func TestConfigValidatePassesWithMinimalValidFields(t *testing.T) {
	cfg := Config{APIKey: "k", Endpoint: "https://example.test", Transport: &fakeTransport{}}
	assert.NoError(t, cfg.Validate())
}

func TestConfigWithDefaultsFillsUnsetFields(t *testing.T) {
	cfg := Config{APIKey: "k", Endpoint: "https://example.test", Transport: &fakeTransport{}}
	full := cfg.withDefaults()

	assert.Equal(t, DefaultAPIKeyHeader, full.APIKeyHeader)
	assert.Equal(t, DefaultFlushInterval, full.FlushInterval)
	assert.Equal(t, DefaultMaxBatchSize, full.MaxBatchSize)
	assert.NotNil(t, full.Persistence)
	assert.NotNil(t, full.Logger)
}

func TestConfigWithDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{
		APIKey:        "k",
		Endpoint:      "https://example.test",
		Transport:     &fakeTransport{},
		APIKeyHeader:  "X-Custom",
		FlushInterval: time.Minute,
		MaxBatchSize:  7,
	}
	full := cfg.withDefaults()

	assert.Equal(t, "X-Custom", full.APIKeyHeader)
	assert.Equal(t, time.Minute, full.FlushInterval)
	assert.Equal(t, 7, full.MaxBatchSize)
}

var _ transport.Transport = (*fakeTransport)(nil)
