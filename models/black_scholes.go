package models

// BlackScholes is the classic spot-basis European model without dividends.
// The Dividend parameter is ignored; DividendRho is always zero.
type BlackScholes struct{}

func (BlackScholes) Name() string { return "black_scholes" }

func (BlackScholes) Price(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	return europeanPrice(p.Spot, p.Strike, p.Time, p.Rate, 0, p.Vol, p.IsCall), nil
}

func (BlackScholes) Greeks(p OptionParams) (Greeks, error) {
	if err := checkParams(p); err != nil {
		return Greeks{}, err
	}
	g := europeanGreeks(p.Spot, p.Strike, p.Time, p.Rate, 0, p.Vol, p.IsCall)
	g.DividendRho = 0
	return g, nil
}

func (BlackScholes) Vega(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	return europeanVega(p.Spot, p.Strike, p.Time, p.Rate, 0, p.Vol), nil
}
