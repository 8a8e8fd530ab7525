// Package config loads the optional YAML configuration tuning telemetry
// access and enrichment thresholds. Every field has a compiled-in default so
// the scanner works without any configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Telemetry  Telemetry  `yaml:"telemetry"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Telemetry configures the runtime-data fetch.
type Telemetry struct {
	EndpointPath   string `yaml:"endpointPath"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	RetryCount     int    `yaml:"retryCount"`
}

// Timeout returns the per-request timeout as a duration.
func (t Telemetry) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Thresholds configures runtime severity escalation.
type Thresholds struct {
	MethodTimeMs float64 `yaml:"methodTimeMs"`
	QueryCostMs  float64 `yaml:"queryCostMs"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Telemetry: Telemetry{
			EndpointPath:   "/services/data/insights/runtime-metrics",
			TimeoutSeconds: 30,
			RetryCount:     2,
		},
		Thresholds: Thresholds{
			MethodTimeMs: 1000,
			QueryCostMs:  1000,
		},
	}
}

// Load reads a YAML configuration file, overlaying it on the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
