// Package models implements the closed-form option pricing models exposed to
// the batch engine. Every model is a pure function of its parameters: no
// model holds cross-call mutable state, so a single model value may be shared
// freely across concurrent workers.
package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// OptionParams is one pricing-parameter tuple. Spot is the underlying spot
// price, or the forward price for forward-basis models. Dividend is a
// continuous yield; models without a dividend treatment ignore it.
type OptionParams struct {
	Spot     float64
	Strike   float64
	Time     float64 // years to expiry
	Rate     float64 // continuously compounded risk-free rate
	Dividend float64 // continuous dividend yield
	Vol      float64 // annualized volatility
	IsCall   bool
}

// Greeks is the set of first/second-order price sensitivities. DividendRho is
// the dividend-yield sensitivity carried by models with a dividend treatment;
// it is zero elsewhere.
type Greeks struct {
	Delta       float64
	Gamma       float64
	Vega        float64
	Theta       float64
	Rho         float64
	DividendRho float64
}

// NaNGreeks marks a failed batch element in a greeks output array.
func NaNGreeks() Greeks {
	n := math.NaN()
	return Greeks{Delta: n, Gamma: n, Vega: n, Theta: n, Rho: n, DividendRho: n}
}

// PricingModel is the capability a concrete model variant exposes to the
// batch engine and the implied-volatility solver. Vega exists separately from
// Greeks because the solver evaluates it in a tight loop.
type PricingModel interface {
	Name() string
	Price(p OptionParams) (float64, error)
	Greeks(p OptionParams) (Greeks, error)
	Vega(p OptionParams) (float64, error)
}

// InvalidInputError reports a pricing parameter outside the model's domain.
// Inside a batch the offending element becomes NaN; single calls surface the
// error itself.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("models: invalid input %s=%g", e.Field, e.Value)
}

// checkParams enforces the common domain: spot/forward, strike, time and
// volatility strictly positive, rate and dividend finite.
func checkParams(p OptionParams) error {
	switch {
	case !(p.Spot > 0) || math.IsInf(p.Spot, 0):
		return &InvalidInputError{Field: "spot", Value: p.Spot}
	case !(p.Strike > 0) || math.IsInf(p.Strike, 0):
		return &InvalidInputError{Field: "strike", Value: p.Strike}
	case !(p.Time > 0) || math.IsInf(p.Time, 0):
		return &InvalidInputError{Field: "time", Value: p.Time}
	case !(p.Vol > 0) || math.IsInf(p.Vol, 0):
		return &InvalidInputError{Field: "vol", Value: p.Vol}
	case math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0):
		return &InvalidInputError{Field: "rate", Value: p.Rate}
	case math.IsNaN(p.Dividend) || math.IsInf(p.Dividend, 0):
		return &InvalidInputError{Field: "dividend", Value: p.Dividend}
	}
	return nil
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

func normCDF(x float64) float64 {
	return stdNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return stdNormal.Prob(x)
}

// dPlusMinus computes the Black-Scholes d1/d2 pair on cost of carry b = r - q.
func dPlusMinus(s, k, t, b, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (b+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

// ByName resolves a model variant from its request name.
func ByName(name string) (PricingModel, error) {
	switch name {
	case "black_scholes", "":
		return BlackScholes{}, nil
	case "merton":
		return Merton{}, nil
	case "black76":
		return Black76{}, nil
	case "american":
		return American{}, nil
	}
	return nil, fmt.Errorf("models: unknown model %q", name)
}
