// Package solver recovers implied volatility from an observed option price by
// inverting a pricing model numerically. The solver is stateless between
// calls: all iteration state lives on the stack of one invocation, so it is
// safe to run concurrently from any number of batch workers.
package solver

import (
	"fmt"
	"math"

	"github.com/drillan/quantforge/config"
	"github.com/drillan/quantforge/models"
)

// vegaFloor is the smallest vega a Newton step will divide by. Below it the
// price curve is locally flat and the solver switches to bisection.
const vegaFloor = 1e-10

// ArbitrageBoundError reports a target price outside the range the model can
// produce inside the admissible volatility bounds. Prices below the lower
// bound violate the intrinsic-value floor.
type ArbitrageBoundError struct {
	Price float64
	Lower float64
	Upper float64
}

func (e *ArbitrageBoundError) Error() string {
	return fmt.Sprintf("solver: price %g outside arbitrage bounds [%g, %g]", e.Price, e.Lower, e.Upper)
}

// NumericalFailureError reports non-convergence within the configured
// iteration budget.
type NumericalFailureError struct {
	Iterations int
	LastVol    float64
	Residual   float64
}

func (e *NumericalFailureError) Error() string {
	return fmt.Sprintf("solver: no convergence after %d iterations (vol=%g residual=%g)",
		e.Iterations, e.LastVol, e.Residual)
}

// state is the per-element iteration state. One value per root-find, never
// shared.
type state struct {
	sigma    float64
	iter     int
	residual float64
	lo, hi   float64
}

// ImpliedVolatility finds the volatility at which model prices p at target.
// The Vol field of p is ignored. The admissible volatility range, tolerance
// and iteration budget come from the process configuration.
func ImpliedVolatility(model models.PricingModel, target float64, p models.OptionParams) (float64, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, err
	}

	if !(target > 0) || math.IsInf(target, 0) {
		return 0, &models.InvalidInputError{Field: "price", Value: target}
	}

	// Price is monotone increasing in volatility, so the model prices at the
	// volatility bounds bracket every attainable target. This doubles as the
	// arbitrage check: a target below the lower bound is under intrinsic.
	p.Vol = cfg.MinVolatility
	lower, err := model.Price(p)
	if err != nil {
		return 0, err
	}
	p.Vol = cfg.MaxVolatility
	upper, err := model.Price(p)
	if err != nil {
		return 0, err
	}

	tol := cfg.SolverTolerance
	if target < lower-tol || target > upper+tol {
		return 0, &ArbitrageBoundError{Price: target, Lower: lower, Upper: upper}
	}
	if target <= lower {
		return cfg.MinVolatility, nil
	}
	if target >= upper {
		return cfg.MaxVolatility, nil
	}

	st := state{
		sigma: seedVolatility(target, p, cfg),
		lo:    cfg.MinVolatility,
		hi:    cfg.MaxVolatility,
	}

	for ; st.iter < cfg.SolverMaxIterations; st.iter++ {
		p.Vol = st.sigma
		price, err := model.Price(p)
		if err != nil {
			return 0, err
		}
		st.residual = price - target

		if math.Abs(st.residual) < tol {
			return st.sigma, nil
		}

		// Maintain the bracket for the bisection fallback.
		if st.residual < 0 {
			st.lo = st.sigma
		} else {
			st.hi = st.sigma
		}

		vega, err := model.Vega(p)
		if err != nil {
			return 0, err
		}

		next := st.sigma - st.residual/vega
		if vega < vegaFloor || next <= st.lo || next >= st.hi || math.IsNaN(next) {
			// Newton is unstable here (flat vega deep in/out of the money or
			// a step that escapes the bracket); bisect instead.
			next = 0.5 * (st.lo + st.hi)
		}
		st.sigma = next
	}

	return math.NaN(), &NumericalFailureError{
		Iterations: st.iter,
		LastVol:    st.sigma,
		Residual:   st.residual,
	}
}

// seedVolatility produces the Newton starting point from the
// Brenner-Subrahmanyam at-the-money inversion, clamped into the admissible
// range. A good seed roughly halves the iteration count against a fixed
// start.
func seedVolatility(target float64, p models.OptionParams, cfg *config.Config) float64 {
	seed := math.Sqrt(2*math.Pi/p.Time) * target / p.Spot
	if math.IsNaN(seed) {
		seed = 0.2
	}
	return math.Min(math.Max(seed, cfg.MinVolatility), cfg.MaxVolatility)
}
