package batch

import (
	"math"
	"sync"

	"github.com/drillan/quantforge/models"
	"github.com/drillan/quantforge/solver"
)

// Engine runs one pricing operation over a broadcast parameter batch.
//
// Failure policy: a ShapeMismatchError, MissingInputError or
// ConfigurationError aborts the whole call before any model runs.
// Per-element failures (domain violations, solver non-convergence) become
// NaN at that position while the rest of the batch completes - except for
// single-element batches, which surface the element's error directly.
type Engine struct {
	Model models.PricingModel

	// Strategy, when set, overrides SelectStrategy. Used to pin an execution
	// plan regardless of batch size.
	Strategy *Strategy

	// Progress, when set, receives the number of finished elements after
	// each completed chunk. It is called concurrently from workers and must
	// be safe for that.
	Progress func(done int)
}

// New returns an engine for the given model variant.
func New(model models.PricingModel) *Engine {
	return &Engine{Model: model}
}

// Prices computes the model price for every element of the batch.
func (e *Engine) Prices(ps *ParameterSet) ([]float64, error) {
	n, err := resolveLength(ps.pricingInputs())
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	if n == 1 {
		v, err := e.Model.Price(ps.paramsAt(0))
		if err != nil {
			return nil, err
		}
		out[0] = v
		return out, nil
	}
	st, err := e.strategy(n)
	if err != nil {
		return nil, err
	}
	e.forEach(n, st, func(i int) {
		v, err := e.Model.Price(ps.paramsAt(i))
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	})
	return out, nil
}

// Greeks computes the full sensitivity record for every element.
func (e *Engine) Greeks(ps *ParameterSet) ([]models.Greeks, error) {
	n, err := resolveLength(ps.pricingInputs())
	if err != nil {
		return nil, err
	}
	out := make([]models.Greeks, n)
	if n == 1 {
		g, err := e.Model.Greeks(ps.paramsAt(0))
		if err != nil {
			return nil, err
		}
		out[0] = g
		return out, nil
	}
	st, err := e.strategy(n)
	if err != nil {
		return nil, err
	}
	e.forEach(n, st, func(i int) {
		g, err := e.Model.Greeks(ps.paramsAt(i))
		if err != nil {
			g = models.NaNGreeks()
		}
		out[i] = g
	})
	return out, nil
}

// ImpliedVols inverts the model for every observed price in the batch.
func (e *Engine) ImpliedVols(ps *ParameterSet) ([]float64, error) {
	n, err := resolveLength(ps.impliedVolInputs())
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	if n == 1 {
		v, err := solver.ImpliedVolatility(e.Model, at(ps.Price, 0), ps.solveParamsAt(0))
		if err != nil {
			return nil, err
		}
		out[0] = v
		return out, nil
	}
	st, err := e.strategy(n)
	if err != nil {
		return nil, err
	}
	e.forEach(n, st, func(i int) {
		v, err := solver.ImpliedVolatility(e.Model, at(ps.Price, i), ps.solveParamsAt(i))
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	})
	return out, nil
}

func (e *Engine) strategy(n int) (Strategy, error) {
	if e.Strategy != nil {
		return *e.Strategy, nil
	}
	return SelectStrategy(n)
}

// forEach applies fn to every index in [0, n) under the given plan.
// Sequential plans loop in place; parallel plans partition the range into
// contiguous chunks and fan them out to a fixed worker pool. Each invocation
// of fn owns index i alone, so workers write disjoint output regions and
// need no locking.
func (e *Engine) forEach(n int, st Strategy, fn func(i int)) {
	if !st.Parallel || n <= st.ChunkSize || st.Workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		if e.Progress != nil && n > 0 {
			e.Progress(n)
		}
		return
	}

	type span struct{ lo, hi int }
	nChunks := (n + st.ChunkSize - 1) / st.ChunkSize
	workers := minInt(st.Workers, nChunks)

	chunks := make(chan span, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range chunks {
				for i := c.lo; i < c.hi; i++ {
					fn(i)
				}
				if e.Progress != nil {
					e.Progress(c.hi - c.lo)
				}
			}
		}()
	}
	for lo := 0; lo < n; lo += st.ChunkSize {
		hi := lo + st.ChunkSize
		if hi > n {
			hi = n
		}
		chunks <- span{lo, hi}
	}
	close(chunks)
	wg.Wait()
}
