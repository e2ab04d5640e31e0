package config

import (
	"fmt"
)

// Transports recognized by the probe. Kept in sync with the transport
// packages registered in main.
var knownTransports = map[string]bool{
	"classic": true,
	"web":     true,
}

// Validate checks configuration correctness. It performs declarative
// validation only and does not mutate the configuration. Any error here
// is fatal at startup; nothing in this set is retryable.
func Validate(cfg *Config) error {
	if cfg.Server.Host == "" {
		return fmt.Errorf("server host is required")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.Password == "" {
		return fmt.Errorf("server password is required")
	}
	if !knownTransports[cfg.Server.Transport] {
		return fmt.Errorf("unknown transport %q (want classic or web)", cfg.Server.Transport)
	}
	if cfg.Server.Secure && cfg.Server.Transport != "web" {
		return fmt.Errorf("secure applies to the web transport only")
	}

	if cfg.Check.TimeoutMs <= 0 {
		return fmt.Errorf("check timeout_ms must be > 0")
	}
	if cfg.Check.Attempts < 1 {
		return fmt.Errorf("check attempts must be >= 1")
	}
	if cfg.Check.JitterMaxMs < 0 {
		return fmt.Errorf("check jitter_max_ms must be >= 0")
	}
	if cfg.Check.FailureThreshold < 1 {
		return fmt.Errorf("check failure_threshold must be >= 1")
	}
	if cfg.Check.IntervalSeconds < 1 {
		return fmt.Errorf("check interval_s must be >= 1")
	}
	if cfg.Check.Command == "" {
		return fmt.Errorf("check command is required")
	}

	if cfg.Heartbeat.URL != "" && cfg.Heartbeat.TimeoutMs <= 0 {
		return fmt.Errorf("heartbeat timeout_ms must be > 0")
	}

	return nil
}
