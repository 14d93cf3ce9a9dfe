// Package config defines service configuration structures and loading hooks.
//
// Configuration is layered: defaults from New, then an optional YAML file
// named by AIMTRACK_CONFIG, then AIMTRACK_* environment variables.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the in-memory entry queue.
	QueueSize int `koanf:"queue_size" validate:"gte=0"`

	// WorkerCount sets the number of ingestion workers; 0 picks a CPU multiple.
	WorkerCount int `koanf:"worker_count" validate:"gte=0"`

	// DedupeSize sets how many entry keys are remembered for deduplication.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"gt=0"`

	// CatalogPath points at a benchmark catalog YAML; empty uses the built-in one.
	CatalogPath string `koanf:"catalog_path" validate:"omitempty,filepath"`

	// AuthMode is jwt or noop.
	AuthMode string `koanf:"auth_mode" validate:"oneof=jwt noop"`

	// AuthSecret is the HS256 key used in jwt mode.
	AuthSecret string `koanf:"auth_secret" validate:"required_if=AuthMode jwt"`

	// ProgressParallelism bounds the goroutines of one progress evaluation.
	ProgressParallelism int `koanf:"progress_parallelism" validate:"gte=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          500_000,
		MaxLeaderboardLimit: 100,
		AuthMode:            "noop",
		ProgressParallelism: runtime.GOMAXPROCS(0),
	}
}
