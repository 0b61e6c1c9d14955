package batch

import "github.com/drillan/quantforge/config"

// Strategy is the execution plan for one batch: either a plain sequential
// loop or a chunked worker pool. Computed once per run and never mutated.
type Strategy struct {
	Parallel  bool
	ChunkSize int
	Workers   int
}

// SelectStrategy picks the plan for a batch of n elements. It is a pure
// function of n and the loaded configuration: spawning workers only pays off
// past a few thousand elements, and the chunk size bounds how much of the
// several input streams a worker touches before moving on, keeping them
// cache resident. Moderate batches cap the worker count so pool overhead
// does not dominate. A malformed environment surfaces as the
// ConfigurationError from the config load.
func SelectStrategy(n int) (Strategy, error) {
	cfg, err := config.Load()
	if err != nil {
		return Strategy{}, err
	}
	switch {
	case n < cfg.SmallBatchThreshold:
		return Strategy{}, nil
	case n < cfg.LargeBatchThreshold:
		return Strategy{
			Parallel:  true,
			ChunkSize: cfg.SmallChunkSize,
			Workers:   minInt(cfg.ModerateWorkerCap, cfg.MaxWorkers),
		}, nil
	default:
		return Strategy{
			Parallel:  true,
			ChunkSize: cfg.LargeChunkSize,
			Workers:   cfg.MaxWorkers,
		}, nil
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
