package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Smile is a quadratic volatility smile in log-moneyness m = ln(K/F):
// sigma(K) = Level + Slope*m + Curvature*m^2.
type Smile struct {
	Forward   float64
	Level     float64
	Slope     float64
	Curvature float64
}

// Vol evaluates the fitted smile at a strike.
func (s Smile) Vol(strike float64) float64 {
	m := math.Log(strike / s.Forward)
	return s.Level + s.Slope*m + s.Curvature*m*m
}

// CalibrateSmile fits the quadratic smile to observed (strike, implied vol)
// pairs by minimizing mean squared error with Nelder-Mead. At least three
// observations are required; strikes and vols must be positive.
func CalibrateSmile(strikes, vols []float64, forward float64) (Smile, error) {
	if len(strikes) != len(vols) {
		return Smile{}, fmt.Errorf("solver: %d strikes vs %d vols", len(strikes), len(vols))
	}
	if len(strikes) < 3 {
		return Smile{}, fmt.Errorf("solver: need at least 3 observations, got %d", len(strikes))
	}
	if !(forward > 0) {
		return Smile{}, fmt.Errorf("solver: forward must be positive, got %g", forward)
	}

	moneyness := make([]float64, len(strikes))
	mean := 0.0
	for i, k := range strikes {
		if !(k > 0) || !(vols[i] > 0) {
			return Smile{}, fmt.Errorf("solver: observation %d not positive (strike=%g vol=%g)", i, k, vols[i])
		}
		moneyness[i] = math.Log(k / forward)
		mean += vols[i]
	}
	mean /= float64(len(vols))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			mse := 0.0
			for i, m := range moneyness {
				fit := x[0] + x[1]*m + x[2]*m*m
				diff := fit - vols[i]
				mse += diff * diff
			}
			return mse / float64(len(moneyness))
		},
	}

	result, err := optimize.Minimize(problem, []float64{mean, 0, 0}, nil, &optimize.NelderMead{})
	if err != nil {
		return Smile{}, err
	}

	return Smile{
		Forward:   forward,
		Level:     result.X[0],
		Slope:     result.X[1],
		Curvature: result.X[2],
	}, nil
}
