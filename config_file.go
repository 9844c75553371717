package telemetry

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/ghodss/yaml.v1"
)

// fileConfig is the YAML-facing shape for LoadConfigFile. It mirrors
// Config's scalar fields only: Transport/Persistence/Logger and the
// provider callbacks are Go values that cannot come from a file and
// must be set on the returned Config by the caller before use.
type fileConfig struct {
	APIKey        string `json:"apiKey"`
	Endpoint      string `json:"endpoint"`
	APIKeyHeader  string `json:"apiKeyHeader,omitempty"`
	FlushInterval int    `json:"flushIntervalMs,omitempty"`
	MaxBatchSize  int    `json:"maxBatchSize,omitempty"`
	MaxBufferSize int    `json:"maxBufferSize,omitempty"`
	MaxRetries    int    `json:"maxRetries,omitempty"`
}

// LoadConfigFile reads a YAML (or JSON, since YAML is a JSON superset)
// config file at path into a Config with its scalar fields populated.
// It is grounded on ldfiledata's use of gopkg.in/ghodss/yaml.v1 to
// accept either format through one parser. The returned Config still
// needs Transport set (and optionally Persistence/Logger/providers)
// before it is valid per Validate.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("telemetry: read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("telemetry: parse config file: %w", err)
	}
	cfg := Config{
		APIKey:        fc.APIKey,
		Endpoint:      fc.Endpoint,
		APIKeyHeader:  fc.APIKeyHeader,
		MaxBatchSize:  fc.MaxBatchSize,
		MaxBufferSize: fc.MaxBufferSize,
		MaxRetries:    fc.MaxRetries,
	}
	if fc.FlushInterval > 0 {
		cfg.FlushInterval = time.Duration(fc.FlushInterval) * time.Millisecond
	}
	return cfg, nil
}
