// Package config holds the process-wide tuning constants for the batch
// pricing engine: execution-strategy thresholds, solver tolerances and the
// admissible volatility range. Values are loaded once at startup from the
// environment (optionally seeded from a .env file) and are read-only
// afterwards.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"
)

// Defaults. The thresholds and chunk sizes were tuned on commodity x86
// hardware; re-derive them when deploying to a different cache hierarchy.
const (
	DefaultSmallBatchThreshold = 1_000
	DefaultLargeBatchThreshold = 10_000
	DefaultSmallChunkSize      = 256
	DefaultLargeChunkSize      = 1_024
	DefaultModerateWorkerCap   = 4

	DefaultSolverTolerance     = 1e-9
	DefaultSolverMaxIterations = 100
	DefaultMinVolatility       = 1e-4
	DefaultMaxVolatility       = 10.0
)

// Config is the read-only-after-init configuration for the engine.
type Config struct {
	// Batches shorter than SmallBatchThreshold run sequentially; between the
	// two thresholds they run parallel with SmallChunkSize chunks and at most
	// ModerateWorkerCap workers; above LargeBatchThreshold they run parallel
	// with LargeChunkSize chunks and every available worker.
	SmallBatchThreshold int
	LargeBatchThreshold int
	SmallChunkSize      int
	LargeChunkSize      int
	ModerateWorkerCap   int

	// MaxWorkers is the worker-pool ceiling, derived from the CPU topology.
	MaxWorkers int

	SolverTolerance     float64
	SolverMaxIterations int
	MinVolatility       float64
	MaxVolatility       float64
}

// ConfigurationError reports a malformed override value.
type ConfigurationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: invalid %s=%q: %s", e.Key, e.Value, e.Reason)
}

var (
	once   sync.Once
	global *Config
	// loadErr survives the Once so every caller sees the same failure.
	loadErr error
)

// Load reads the configuration exactly once per process. A .env file in the
// working directory is honoured when present; explicit environment variables
// win. Subsequent calls return the already-loaded configuration.
func Load() (*Config, error) {
	once.Do(func() {
		// Missing .env is fine; the defaults and environment cover it.
		_ = godotenv.Load()
		global, loadErr = fromEnv()
	})
	return global, loadErr
}

// Get returns the loaded configuration, loading defaults on first use. It
// panics on a malformed environment; batch entry points that need an error
// instead should call Load.
func Get() *Config {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func fromEnv() (*Config, error) {
	c := &Config{
		SmallBatchThreshold: DefaultSmallBatchThreshold,
		LargeBatchThreshold: DefaultLargeBatchThreshold,
		SmallChunkSize:      DefaultSmallChunkSize,
		LargeChunkSize:      DefaultLargeChunkSize,
		ModerateWorkerCap:   DefaultModerateWorkerCap,
		MaxWorkers:          detectWorkers(),
		SolverTolerance:     DefaultSolverTolerance,
		SolverMaxIterations: DefaultSolverMaxIterations,
		MinVolatility:       DefaultMinVolatility,
		MaxVolatility:       DefaultMaxVolatility,
	}

	ints := []struct {
		key string
		dst *int
		min int
	}{
		{"QF_SMALL_BATCH_THRESHOLD", &c.SmallBatchThreshold, 1},
		{"QF_LARGE_BATCH_THRESHOLD", &c.LargeBatchThreshold, 1},
		{"QF_SMALL_CHUNK_SIZE", &c.SmallChunkSize, 1},
		{"QF_LARGE_CHUNK_SIZE", &c.LargeChunkSize, 1},
		{"QF_MODERATE_WORKER_CAP", &c.ModerateWorkerCap, 1},
		{"QF_MAX_WORKERS", &c.MaxWorkers, 1},
		{"QF_SOLVER_MAX_ITERATIONS", &c.SolverMaxIterations, 1},
	}
	for _, f := range ints {
		v, ok := os.LookupEnv(f.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ConfigurationError{Key: f.key, Value: v, Reason: "not an integer"}
		}
		if n < f.min {
			return nil, &ConfigurationError{Key: f.key, Value: v, Reason: fmt.Sprintf("must be >= %d", f.min)}
		}
		*f.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"QF_SOLVER_TOLERANCE", &c.SolverTolerance},
		{"QF_MIN_VOLATILITY", &c.MinVolatility},
		{"QF_MAX_VOLATILITY", &c.MaxVolatility},
	}
	for _, f := range floats {
		v, ok := os.LookupEnv(f.key)
		if !ok || v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &ConfigurationError{Key: f.key, Value: v, Reason: "not a number"}
		}
		if x <= 0 {
			return nil, &ConfigurationError{Key: f.key, Value: v, Reason: "must be positive"}
		}
		*f.dst = x
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.LargeBatchThreshold < c.SmallBatchThreshold {
		return &ConfigurationError{
			Key:    "QF_LARGE_BATCH_THRESHOLD",
			Value:  strconv.Itoa(c.LargeBatchThreshold),
			Reason: "must be >= QF_SMALL_BATCH_THRESHOLD",
		}
	}
	if c.MaxVolatility <= c.MinVolatility {
		return &ConfigurationError{
			Key:    "QF_MAX_VOLATILITY",
			Value:  strconv.FormatFloat(c.MaxVolatility, 'g', -1, 64),
			Reason: "must exceed QF_MIN_VOLATILITY",
		}
	}
	return nil
}

// detectWorkers prefers the logical core count reported by the OS probe and
// falls back to the Go runtime when the probe is unavailable (containers,
// exotic platforms).
func detectWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
