package models

// Merton is the spot-basis European model with a continuous dividend yield
// (Merton 1973). With Dividend zero it reduces to BlackScholes.
type Merton struct{}

func (Merton) Name() string { return "merton" }

func (Merton) Price(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	return europeanPrice(p.Spot, p.Strike, p.Time, p.Rate, p.Dividend, p.Vol, p.IsCall), nil
}

func (Merton) Greeks(p OptionParams) (Greeks, error) {
	if err := checkParams(p); err != nil {
		return Greeks{}, err
	}
	return europeanGreeks(p.Spot, p.Strike, p.Time, p.Rate, p.Dividend, p.Vol, p.IsCall), nil
}

func (Merton) Vega(p OptionParams) (float64, error) {
	if err := checkParams(p); err != nil {
		return 0, err
	}
	return europeanVega(p.Spot, p.Strike, p.Time, p.Rate, p.Dividend, p.Vol), nil
}
