package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the single validated configuration structure, constructed
// once at startup. Values come from an optional YAML file overlaid by
// environment variables; invalid values are startup errors and are
// never silently coerced.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Check     CheckConfig     `yaml:"check"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	HTTP      HTTPConfig      `yaml:"http"`

	DatabasePath string `yaml:"database"`
}

// ServerConfig identifies the monitored game server.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Password  string `yaml:"password"`
	Transport string `yaml:"transport"` // classic | web
	Secure    bool   `yaml:"secure"`    // web transport only: wss
}

// CheckConfig tunes the probe cycle.
type CheckConfig struct {
	TimeoutMs        int    `yaml:"timeout_ms"`
	Attempts         int    `yaml:"attempts"`
	JitterMaxMs      int    `yaml:"jitter_max_ms"`
	FailureThreshold int    `yaml:"failure_threshold"`
	IntervalSeconds  int    `yaml:"interval_s"`
	Command          string `yaml:"command"`
	ClientName       string `yaml:"client_name"`
}

// HeartbeatConfig points at the external uptime collector. An empty URL
// disables heartbeat delivery.
type HeartbeatConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// HTTPConfig covers the local status API.
type HTTPConfig struct {
	Listen string `yaml:"listen"`

	// TokenHash is a bcrypt hash of the API bearer token. Empty leaves
	// the status API unauthenticated.
	TokenHash string `yaml:"token_hash"`
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Check.TimeoutMs) * time.Millisecond
}

func (c *Config) JitterMax() time.Duration {
	return time.Duration(c.Check.JitterMaxMs) * time.Millisecond
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.Check.IntervalSeconds) * time.Second
}

func (c *Config) HeartbeatTimeout() time.Duration {
	return time.Duration(c.Heartbeat.TimeoutMs) * time.Millisecond
}

// Load builds the configuration: defaults, then the YAML file named by
// RUSTWATCH_CONFIG (if any), then environment overrides. The result is
// not yet validated; call Validate before use.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("RUSTWATCH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// The history database lives under a directory that must exist.
	dbPath, err := filepath.Abs(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}
	cfg.DatabasePath = dbPath

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "classic",
		},
		Check: CheckConfig{
			TimeoutMs:        5000,
			Attempts:         3,
			JitterMaxMs:      1000,
			FailureThreshold: 3,
			IntervalSeconds:  60,
			Command:          "status",
			ClientName:       "rustwatch",
		},
		Heartbeat: HeartbeatConfig{
			TimeoutMs: 10000,
		},
		HTTP: HTTPConfig{
			Listen: ":8080",
		},
		DatabasePath: "./data/rustwatch.db",
	}
}

func applyEnv(cfg *Config) error {
	cfg.Server.Host = envOr("RUSTWATCH_HOST", cfg.Server.Host)
	cfg.Server.Password = envOr("RUSTWATCH_PASSWORD", cfg.Server.Password)
	cfg.Server.Transport = envOr("RUSTWATCH_TRANSPORT", cfg.Server.Transport)
	cfg.Check.Command = envOr("RUSTWATCH_COMMAND", cfg.Check.Command)
	cfg.Check.ClientName = envOr("RUSTWATCH_CLIENT_NAME", cfg.Check.ClientName)
	cfg.Heartbeat.URL = envOr("RUSTWATCH_HEARTBEAT_URL", cfg.Heartbeat.URL)
	cfg.HTTP.Listen = envOr("RUSTWATCH_LISTEN", cfg.HTTP.Listen)
	cfg.HTTP.TokenHash = envOr("RUSTWATCH_API_TOKEN_HASH", cfg.HTTP.TokenHash)
	cfg.DatabasePath = envOr("RUSTWATCH_DB", cfg.DatabasePath)

	ints := []struct {
		key string
		dst *int
	}{
		{"RUSTWATCH_PORT", &cfg.Server.Port},
		{"RUSTWATCH_TIMEOUT_MS", &cfg.Check.TimeoutMs},
		{"RUSTWATCH_ATTEMPTS", &cfg.Check.Attempts},
		{"RUSTWATCH_JITTER_MAX_MS", &cfg.Check.JitterMaxMs},
		{"RUSTWATCH_FAIL_THRESHOLD", &cfg.Check.FailureThreshold},
		{"RUSTWATCH_INTERVAL_S", &cfg.Check.IntervalSeconds},
		{"RUSTWATCH_HEARTBEAT_TIMEOUT_MS", &cfg.Heartbeat.TimeoutMs},
	}
	for _, e := range ints {
		if err := envInt(e.key, e.dst); err != nil {
			return err
		}
	}

	return envBool("RUSTWATCH_SECURE", &cfg.Server.Secure)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}
