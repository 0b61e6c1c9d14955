package models

import "math"

// Black76 prices European options on a forward or futures price. Spot is
// interpreted as the forward; the Dividend parameter does not apply and is
// ignored.
type Black76 struct{}

func (Black76) Name() string { return "black76" }

func (Black76) Price(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	return black76Price(p.Spot, p.Strike, p.Time, p.Rate, p.Vol, p.IsCall), nil
}

func (Black76) Greeks(p OptionParams) (Greeks, error) {
	if err := checkParams(p); err != nil {
		return Greeks{}, err
	}
	f, k, t, sigma := p.Spot, p.Strike, p.Time, p.Vol
	d1, _ := dPlusMinus(f, k, t, 0, sigma)
	sqrtT := math.Sqrt(t)
	df := math.Exp(-p.Rate * t)
	pdf := normPDF(d1)
	price := black76Price(f, k, t, p.Rate, sigma, p.IsCall)

	g := Greeks{
		Gamma: df * pdf / (f * sigma * sqrtT),
		Vega:  f * df * pdf * sqrtT,
		// Discounting is the only rate exposure on a forward basis.
		Rho: -t * price,
		// -dV/dT with the forward held fixed.
		Theta: p.Rate*price - f*df*pdf*sigma/(2*sqrtT),
	}
	if p.IsCall {
		g.Delta = df * normCDF(d1)
	} else {
		g.Delta = df * (normCDF(d1) - 1)
	}
	return g, nil
}

func (Black76) Vega(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	d1, _ := dPlusMinus(p.Spot, p.Strike, p.Time, 0, p.Vol)
	return p.Spot * math.Exp(-p.Rate*p.Time) * normPDF(d1) * math.Sqrt(p.Time), nil
}

// black76Price is the discounted Black formula on forward f.
func black76Price(f, k, t, r, sigma float64, isCall bool) float64 {
	d1, d2 := dPlusMinus(f, k, t, 0, sigma)
	df := math.Exp(-r * t)
	if isCall {
		return df * (f*normCDF(d1) - k*normCDF(d2))
	}
	return df * (k*normCDF(-d2) - f*normCDF(-d1))
}
