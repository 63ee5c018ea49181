// Package config loads blochview settings from a YAML file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// HardMaxQubits bounds MaxQubits. A 26-qubit statevector already takes 1 GiB.
const HardMaxQubits = 26

// Environment variables consulted by Load.
const (
	EnvAddr        = "BLOCHVIEW_ADDR"
	EnvMaxQubits   = "BLOCHVIEW_MAX_QUBITS"
	EnvLogLevel    = "BLOCHVIEW_LOG_LEVEL"
	EnvLogFormat   = "BLOCHVIEW_LOG_FORMAT"
	EnvCORSOrigins = "BLOCHVIEW_CORS_ORIGINS"
)

// RateLimit configures the per-process token bucket. A zero Rate disables
// limiting.
type RateLimit struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// Cache configures the processing response cache.
type Cache struct {
	Enabled         bool          `yaml:"enabled"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Breaker configures the circuit breaker around processing.
type Breaker struct {
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// Config is the full runtime configuration.
type Config struct {
	Addr            string        `yaml:"addr"`
	MaxQubits       int           `yaml:"max_qubits"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       RateLimit     `yaml:"rate_limit"`
	Cache           Cache         `yaml:"cache"`
	Breaker         Breaker       `yaml:"breaker"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:            ":5000",
		MaxQubits:       20,
		LogLevel:        "info",
		LogFormat:       "text",
		CORSOrigins:     []string{"*"},
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       RateLimit{Rate: 50, Burst: 100},
		Cache: Cache{
			Enabled:         true,
			TTL:             5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Breaker: Breaker{MaxFailures: 5, OpenTimeout: 30 * time.Second},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup(EnvMaxQubits); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxQubits, err)
		}
		c.MaxQubits = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvCORSOrigins); ok && v != "" {
		c.CORSOrigins = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.MaxQubits < 1 || c.MaxQubits > HardMaxQubits {
		errs = append(errs, fmt.Errorf("max_qubits must be between 1 and %d, got %d", HardMaxQubits, c.MaxQubits))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text, json or logfmt, got %q", c.LogFormat))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.RateLimit.Rate < 0 {
		errs = append(errs, errors.New("rate_limit.rate must not be negative"))
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1"))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive when the cache is enabled"))
	}
	if c.Breaker.MaxFailures < 1 {
		errs = append(errs, errors.New("breaker.max_failures must be at least 1"))
	}
	if c.Breaker.OpenTimeout <= 0 {
		errs = append(errs, errors.New("breaker.open_timeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
