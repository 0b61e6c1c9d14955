package models

import "math"

// europeanPrice prices a European option under geometric Brownian motion with
// continuous dividend yield q. Shared by the spot-basis variants.
func europeanPrice(s, k, t, r, q, sigma float64, isCall bool) float64 {
	d1, d2 := dPlusMinus(s, k, t, r-q, sigma)
	df := math.Exp(-r * t)
	dq := math.Exp(-q * t)
	if isCall {
		return s*dq*normCDF(d1) - k*df*normCDF(d2)
	}
	return k*df*normCDF(-d2) - s*dq*normCDF(-d1)
}

func europeanVega(s, k, t, r, q, sigma float64) float64 {
	d1, _ := dPlusMinus(s, k, t, r-q, sigma)
	return s * math.Exp(-q*t) * normPDF(d1) * math.Sqrt(t)
}

func europeanGreeks(s, k, t, r, q, sigma float64, isCall bool) Greeks {
	d1, d2 := dPlusMinus(s, k, t, r-q, sigma)
	sqrtT := math.Sqrt(t)
	df := math.Exp(-r * t)
	dq := math.Exp(-q * t)
	pdf := normPDF(d1)

	g := Greeks{
		Gamma: dq * pdf / (s * sigma * sqrtT),
		Vega:  s * dq * pdf * sqrtT,
	}
	if isCall {
		nd1 := normCDF(d1)
		nd2 := normCDF(d2)
		g.Delta = dq * nd1
		g.Theta = -s*dq*pdf*sigma/(2*sqrtT) - r*k*df*nd2 + q*s*dq*nd1
		g.Rho = k * t * df * nd2
		g.DividendRho = -s * t * dq * nd1
	} else {
		nmd1 := normCDF(-d1)
		nmd2 := normCDF(-d2)
		g.Delta = dq * (normCDF(d1) - 1)
		g.Theta = -s*dq*pdf*sigma/(2*sqrtT) + r*k*df*nmd2 - q*s*dq*nmd1
		g.Rho = -k * t * df * nmd2
		g.DividendRho = s * t * dq * nmd1
	}
	return g
}
