package models

import "math"

// American approximates American option prices with the Bjerksund-Stensland
// (1993) flat-boundary formula. When early exercise is never optimal the
// price degenerates to the European value. Greeks and vega come from central
// finite differences of the price, which keeps the variant usable by the
// implied-volatility solver.
type American struct{}

func (American) Name() string { return "american" }

func (American) Price(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	return americanPrice(p), nil
}

func (a American) Greeks(p OptionParams) (Greeks, error) {
	if err := checkParams(p); err != nil {
		return Greeks{}, err
	}
	const rel = 1e-4
	ds := p.Spot * rel
	dv := p.Vol * rel
	dt := math.Min(p.Time*rel, p.Time/2)
	dr := 1e-5

	bump := func(f func(*OptionParams, float64), h float64) float64 {
		up, dn := p, p
		f(&up, h)
		f(&dn, -h)
		return (americanPrice(up) - americanPrice(dn)) / (2 * h)
	}

	base := americanPrice(p)
	up, dn := p, p
	up.Spot += ds
	dn.Spot -= ds

	g := Greeks{
		Delta: (americanPrice(up) - americanPrice(dn)) / (2 * ds),
		Gamma: (americanPrice(up) - 2*base + americanPrice(dn)) / (ds * ds),
		Vega:  bump(func(q *OptionParams, h float64) { q.Vol += h }, dv),
		// Theta is the sensitivity to the passage of time, hence the sign.
		Theta:       -bump(func(q *OptionParams, h float64) { q.Time += h }, dt),
		Rho:         bump(func(q *OptionParams, h float64) { q.Rate += h }, dr),
		DividendRho: bump(func(q *OptionParams, h float64) { q.Dividend += h }, dr),
	}
	return g, nil
}

func (American) Vega(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	dv := p.Vol * 1e-4
	up, dn := p, p
	up.Vol += dv
	dn.Vol -= dv
	return (americanPrice(up) - americanPrice(dn)) / (2 * dv), nil
}

func americanPrice(p OptionParams) float64 {
	if p.IsCall {
		return bs1993Call(p.Spot, p.Strike, p.Time, p.Rate, p.Rate-p.Dividend, p.Vol)
	}
	// American put/call duality: swap spot with strike and rate with yield.
	return bs1993Call(p.Strike, p.Spot, p.Time, p.Dividend, p.Dividend-p.Rate, p.Vol)
}

// bs1993Call is the Bjerksund-Stensland 1993 American call on cost of carry
// b = r - q.
func bs1993Call(s, k, t, r, b, sigma float64) float64 {
	if b >= r {
		// Early exercise never optimal without a positive yield.
		return europeanPrice(s, k, t, r, r-b, sigma, true)
	}

	v2 := sigma * sigma
	beta := (0.5 - b/v2) + math.Sqrt(math.Pow(b/v2-0.5, 2)+2*r/v2)
	bInf := beta / (beta - 1) * k
	b0 := k
	if r > 0 {
		b0 = math.Max(k, r/(r-b)*k)
	}
	h := -(b*t + 2*sigma*math.Sqrt(t)) * b0 / (bInf - b0)
	trigger := b0 + (bInf-b0)*(1-math.Exp(h))

	if s >= trigger {
		return s - k
	}

	alpha := (trigger - k) * math.Pow(trigger, -beta)
	return alpha*math.Pow(s, beta) -
		alpha*bsPhi(s, t, beta, trigger, trigger, r, b, sigma) +
		bsPhi(s, t, 1, trigger, trigger, r, b, sigma) -
		bsPhi(s, t, 1, k, trigger, r, b, sigma) -
		k*bsPhi(s, t, 0, trigger, trigger, r, b, sigma) +
		k*bsPhi(s, t, 0, k, trigger, r, b, sigma)
}

func bsPhi(s, t, gamma, h, trigger, r, b, sigma float64) float64 {
	v2 := sigma * sigma
	sqrtT := math.Sqrt(t)
	lambda := (-r + gamma*b + 0.5*gamma*(gamma-1)*v2) * t
	d := -(math.Log(s/h) + (b+(gamma-0.5)*v2)*t) / (sigma * sqrtT)
	kappa := 2*b/v2 + 2*gamma - 1
	return math.Exp(lambda) * math.Pow(s, gamma) *
		(normCDF(d) - math.Pow(trigger/s, kappa)*normCDF(d-2*math.Log(trigger/s)/(sigma*sqrtT)))
}
