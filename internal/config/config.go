// Package config manages csmasimd configuration using koanf/v2.
//
// Supports YAML files and environment variable overrides layered on top of
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete csmasimd configuration.
type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Cache   CacheConfig   `koanf:"cache"`
	Engine  EngineConfig  `koanf:"engine"`
}

// HTTPConfig holds the simulation API server configuration.
type HTTPConfig struct {
	// Addr is the HTTP listen address (e.g., ":8080").
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight requests to drain.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// CacheConfig holds the Redis-backed result memoization cache
// configuration. The engine is a pure function of (Config, seed), so
// caching a run's Result by its hash is safe.
type CacheConfig struct {
	// Enabled toggles the cache; when false, every run goes to the engine.
	Enabled bool `koanf:"enabled"`

	// Addr is the Redis address (e.g., "localhost:6379").
	Addr string `koanf:"addr"`

	// TTL is how long a cached Result is kept.
	TTL time.Duration `koanf:"ttl"`

	// ConnectTimeout bounds the initial connection retry loop.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// EngineConfig holds default simulation parameters (engine.Config, §3),
// loaded and validated with the rest of the configuration and convertible
// with simrunner.EngineConfig. The daemon's HTTP handler does not apply
// them: a field omitted from a simulate request is zero in the
// engine.Config that is run.
type EngineConfig struct {
	SimDuration      int     `koanf:"sim_duration"`
	NodeCount        int     `koanf:"node_count"`
	DataSlots        int     `koanf:"data_slots"`
	CollisionPenalty int     `koanf:"collision_penalty"`
	Pe               int     `koanf:"pe"`
	MinBe            int     `koanf:"min_be"`
	MaxBe            int     `koanf:"max_be"`
	MaxNb            int     `koanf:"max_nb"`
	PacketGenMode    string  `koanf:"packet_gen_mode"`
	PacketProb       float64 `koanf:"packet_prob"`
	PacketInterval   int     `koanf:"packet_interval"`
	SlotDurationUs   int     `koanf:"slot_duration_us"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults. Engine
// defaults follow the 802.15.4-style parameters used throughout spec.md's
// worked examples: minBe=0, maxBe=4 gives a modest exponential backoff
// range without requiring callers to specify one.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Enabled:        false,
			Addr:           "localhost:6379",
			TTL:             1 * time.Hour,
			ConnectTimeout: 5 * time.Second,
		},
		Engine: EngineConfig{
			SimDuration:      1000,
			NodeCount:        5,
			DataSlots:        10,
			CollisionPenalty: 40,
			Pe:               2,
			MinBe:            0,
			MaxBe:            4,
			MaxNb:            4,
			PacketGenMode:    "Random",
			PacketProb:       0.01,
			PacketInterval:   50,
			SlotDurationUs:   320,
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for csmasimd configuration.
// Variables are named CSMASIM_<section>_<key>, e.g., CSMASIM_HTTP_ADDR.
const envPrefix = "CSMASIM_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (CSMASIM_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults. A missing file at path
// is not an error; defaults and environment overrides still apply.
//
// Environment variable mapping:
//
//	CSMASIM_HTTP_ADDR      -> http.addr
//	CSMASIM_METRICS_ADDR   -> metrics.addr
//	CSMASIM_CACHE_ENABLED  -> cache.enabled
//	CSMASIM_LOG_LEVEL      -> log.level
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// envKeyMapper transforms CSMASIM_HTTP_ADDR -> http.addr and
// CSMASIM_HTTP_SHUTDOWN_TIMEOUT -> http.shutdown_timeout.
// Strips the CSMASIM_ prefix, lowercases, and replaces the first _ (the
// section separator) with .
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"http.addr":               defaults.HTTP.Addr,
		"http.shutdown_timeout":   defaults.HTTP.ShutdownTimeout.String(),
		"metrics.addr":            defaults.Metrics.Addr,
		"metrics.path":            defaults.Metrics.Path,
		"log.level":               defaults.Log.Level,
		"log.format":              defaults.Log.Format,
		"cache.enabled":           defaults.Cache.Enabled,
		"cache.addr":              defaults.Cache.Addr,
		"cache.ttl":               defaults.Cache.TTL.String(),
		"cache.connect_timeout":   defaults.Cache.ConnectTimeout.String(),
		"engine.sim_duration":     defaults.Engine.SimDuration,
		"engine.node_count":       defaults.Engine.NodeCount,
		"engine.data_slots":       defaults.Engine.DataSlots,
		"engine.collision_penalty": defaults.Engine.CollisionPenalty,
		"engine.pe":               defaults.Engine.Pe,
		"engine.min_be":           defaults.Engine.MinBe,
		"engine.max_be":           defaults.Engine.MaxBe,
		"engine.max_nb":           defaults.Engine.MaxNb,
		"engine.packet_gen_mode":  defaults.Engine.PacketGenMode,
		"engine.packet_prob":      defaults.Engine.PacketProb,
		"engine.packet_interval":  defaults.Engine.PacketInterval,
		"engine.slot_duration_us": defaults.Engine.SlotDurationUs,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyHTTPAddr indicates the HTTP listen address is empty.
	ErrEmptyHTTPAddr = errors.New("http.addr must not be empty")

	// ErrInvalidSimDuration indicates engine.sim_duration is out of range.
	ErrInvalidSimDuration = errors.New("engine.sim_duration must be >= 1")

	// ErrInvalidNodeCount indicates engine.node_count is out of range.
	ErrInvalidNodeCount = errors.New("engine.node_count must be >= 1")

	// ErrInvalidBackoffRange indicates engine.min_be exceeds engine.max_be.
	ErrInvalidBackoffRange = errors.New("engine.min_be must be <= engine.max_be")

	// ErrInvalidPacketGenMode indicates an unrecognized packet generation mode.
	ErrInvalidPacketGenMode = errors.New("engine.packet_gen_mode must be Random or Interval")

	// ErrCacheAddrRequired indicates the cache is enabled but has no address.
	ErrCacheAddrRequired = errors.New("cache.addr must not be empty when cache.enabled is true")
)

// validPacketGenModes lists the recognized packet_gen_mode strings.
var validPacketGenModes = map[string]bool{
	"Random":   true,
	"Interval": true,
}

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.HTTP.Addr == "" {
		return ErrEmptyHTTPAddr
	}

	if cfg.Engine.SimDuration < 1 {
		return ErrInvalidSimDuration
	}

	if cfg.Engine.NodeCount < 1 {
		return ErrInvalidNodeCount
	}

	if cfg.Engine.MinBe > cfg.Engine.MaxBe {
		return ErrInvalidBackoffRange
	}

	if !validPacketGenModes[cfg.Engine.PacketGenMode] {
		return fmt.Errorf("%q: %w", cfg.Engine.PacketGenMode, ErrInvalidPacketGenMode)
	}

	if cfg.Cache.Enabled && cfg.Cache.Addr == "" {
		return ErrCacheAddrRequired
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
