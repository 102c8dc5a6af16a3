// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// DBPath points at the SQLite assessment database. ":memory:" gives an
	// ephemeral store.
	DBPath string `koanf:"db_path"`

	// BatchQueueSize bounds the in-memory batch queue between the record
	// grouper and the evaluation workers.
	BatchQueueSize int `koanf:"batch_queue_size"`

	// WorkerCount sets the number of evaluation workers. Parallelism is
	// across submissions only.
	WorkerCount int `koanf:"worker_count"`

	// MaxReviewersLimit caps GET /reviewers?limit.
	MaxReviewersLimit int `koanf:"max_reviewers_limit"`

	// Sensitivity is the grading comparison divisor: 1 compares strictly,
	// larger values are laxer.
	Sensitivity float64 `koanf:"sensitivity"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8090",
		DBPath:            "peergrade.db",
		BatchQueueSize:    1024,
		WorkerCount:       runtime.NumCPU(),
		MaxReviewersLimit: 100,
		Sensitivity:       5,
	}
}
