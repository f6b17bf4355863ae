// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Load layers an optional YAML file and AIME_* environment variables on
//     top of those defaults.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Environment conventions.
const (
	EnvPrefix = "AIME_"
	// EnvConfigFile names an optional YAML file loaded before the environment.
	EnvConfigFile = "AIME_CONFIG"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, receives a rotated copy of the log stream.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":4000".
	Addr string `koanf:"addr"`

	// Env is reported by /api/status.
	Env string `koanf:"env"`

	// FixturesDir overlays the embedded partner fixtures when set.
	FixturesDir string `koanf:"fixtures_dir"`

	// DataDir holds campaigns.json and handles.json.
	DataDir string `koanf:"data_dir"`

	// ImportDir receives imported partner configs; it is read last on load.
	ImportDir string `koanf:"import_dir"`

	// DefaultPartner backs lenient snapshot lookups.
	DefaultPartner string `koanf:"default_partner"`

	// BurstReachThreshold is the reach above which high-volume partners
	// route straight to their first priority persona.
	BurstReachThreshold int64 `koanf:"burst_reach_threshold"`

	// WatchFixtures reloads partner configs when the fixture or import
	// directory changes.
	WatchFixtures bool `koanf:"watch_fixtures"`

	// ReloadDebounceMS coalesces bursts of file events.
	ReloadDebounceMS int `koanf:"reload_debounce_ms"`

	// MetricsEnabled turns prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsLatencyBuckets overrides the HTTP latency histogram buckets
	// (milliseconds, strictly increasing). Env form: "5,25,100".
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// MetricsRefreshMS is the runtime sampling interval.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// Feature flags reported by /api/status.
	FeatureAdminOnly     bool `koanf:"feature_admin_only"`
	FeaturePartner       bool `koanf:"feature_partner"`
	FeatureMembers       bool `koanf:"feature_members"`
	FeatureSignalNetwork bool `koanf:"feature_signal_network"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":4000",
		Env:                 "development",
		DataDir:             "data",
		ImportDir:           "partner-config",
		DefaultPartner:      "allmax",
		BurstReachThreshold: 10_000,
		ReloadDebounceMS:    250,
		MetricsEnabled:      true,
		MetricsNamespace:    "aime",
		MetricsRefreshMS:    10_000,
		FeatureAdminOnly:    true,
	}
}

// Validate checks values that would make the service unusable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if strings.TrimSpace(c.DefaultPartner) == "" {
		errs = append(errs, errors.New("default_partner is empty"))
	}
	if c.BurstReachThreshold < 0 {
		errs = append(errs, fmt.Errorf("burst_reach_threshold %d is negative", c.BurstReachThreshold))
	}
	if c.ReloadDebounceMS < 0 {
		errs = append(errs, fmt.Errorf("reload_debounce_ms %d is negative", c.ReloadDebounceMS))
	}
	if c.MetricsRefreshMS < 0 {
		errs = append(errs, fmt.Errorf("metrics_refresh_ms %d is negative", c.MetricsRefreshMS))
	}
	for i := 1; i < len(c.MetricsLatencyBuckets); i++ {
		if c.MetricsLatencyBuckets[i] <= c.MetricsLatencyBuckets[i-1] {
			errs = append(errs, errors.New("metrics_latency_buckets must be strictly increasing"))
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Flags returns the process feature flags keyed the way /api/status
// reports them.
func (c *Config) Flags() map[string]bool {
	return map[string]bool{
		"FEATURE_ADMIN_ONLY":     c.FeatureAdminOnly,
		"FEATURE_PARTNER":        c.FeaturePartner,
		"FEATURE_MEMBERS":        c.FeatureMembers,
		"FEATURE_SIGNAL_NETWORK": c.FeatureSignalNetwork,
	}
}
