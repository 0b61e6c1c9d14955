package models

import (
	"errors"
	"math"
	"testing"
)

func assertFloatEqual(t *testing.T, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("not equal, got: %v, want: %v", got, want)
	}
}

var atmParams = OptionParams{
	Spot:   100,
	Strike: 100,
	Time:   1,
	Rate:   0.05,
	Vol:    0.2,
	IsCall: true,
}

func TestBlackScholesReferencePrices(t *testing.T) {
	call, err := BlackScholes{}.Price(atmParams)
	if err != nil {
		t.Fatal(err)
	}
	assertFloatEqual(t, call, 10.450583572185565, 1e-10)

	put := atmParams
	put.IsCall = false
	p, err := BlackScholes{}.Price(put)
	if err != nil {
		t.Fatal(err)
	}
	assertFloatEqual(t, p, 5.573526022256971, 1e-10)
}

func TestBlackScholesReferenceGreeks(t *testing.T) {
	g, err := BlackScholes{}.Greeks(atmParams)
	if err != nil {
		t.Fatal(err)
	}
	assertFloatEqual(t, g.Delta, 0.6368306511756191, 1e-9)
	assertFloatEqual(t, g.Gamma, 0.018762017345846895, 1e-9)
	assertFloatEqual(t, g.Vega, 37.52403469169379, 1e-8)
	assertFloatEqual(t, g.Theta, -6.414027546438197, 1e-8)
	assertFloatEqual(t, g.Rho, 53.232481545376345, 1e-8)
	if g.DividendRho != 0 {
		t.Errorf("Black-Scholes carries no dividend sensitivity, got %v", g.DividendRho)
	}

	v, err := BlackScholes{}.Vega(atmParams)
	if err != nil {
		t.Fatal(err)
	}
	assertFloatEqual(t, v, g.Vega, 1e-12)
}

func TestPutCallParity(t *testing.T) {
	cases := []struct {
		name  string
		model PricingModel
		q     float64
	}{
		{"black_scholes", BlackScholes{}, 0},
		{"merton", Merton{}, 0.03},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := OptionParams{Spot: 105, Strike: 95, Time: 0.75, Rate: 0.04, Dividend: tc.q, Vol: 0.3, IsCall: true}
			call, err := tc.model.Price(p)
			if err != nil {
				t.Fatal(err)
			}
			p.IsCall = false
			put, err := tc.model.Price(p)
			if err != nil {
				t.Fatal(err)
			}
			lhs := call - put
			rhs := p.Spot*math.Exp(-tc.q*p.Time) - p.Strike*math.Exp(-p.Rate*p.Time)
			assertFloatEqual(t, lhs, rhs, 1e-10)
		})
	}
}

func TestBlack76ForwardParity(t *testing.T) {
	// c - p = df * (F - K)
	p := OptionParams{Spot: 102, Strike: 98, Time: 0.5, Rate: 0.06, Vol: 0.25, IsCall: true}
	call, err := Black76{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	p.IsCall = false
	put, err := Black76{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	rhs := math.Exp(-p.Rate*p.Time) * (p.Spot - p.Strike)
	assertFloatEqual(t, call-put, rhs, 1e-10)
}

func TestBlack76GreeksMatchFiniteDifferences(t *testing.T) {
	p := OptionParams{Spot: 95, Strike: 100, Time: 0.75, Rate: 0.04, Vol: 0.3, IsCall: false}
	g, err := Black76{}.Greeks(p)
	if err != nil {
		t.Fatal(err)
	}

	diff := func(edit func(*OptionParams, float64), h float64) float64 {
		up, dn := p, p
		edit(&up, h)
		edit(&dn, -h)
		pu, err := Black76{}.Price(up)
		if err != nil {
			t.Fatal(err)
		}
		pd, err := Black76{}.Price(dn)
		if err != nil {
			t.Fatal(err)
		}
		return (pu - pd) / (2 * h)
	}

	assertFloatEqual(t, g.Delta, diff(func(q *OptionParams, h float64) { q.Spot += h }, 1e-4), 1e-6)
	assertFloatEqual(t, g.Vega, diff(func(q *OptionParams, h float64) { q.Vol += h }, 1e-6), 1e-5)
	assertFloatEqual(t, g.Rho, diff(func(q *OptionParams, h float64) { q.Rate += h }, 1e-6), 1e-5)
	assertFloatEqual(t, g.Theta, -diff(func(q *OptionParams, h float64) { q.Time += h }, 1e-6), 1e-4)
}

func TestMertonMatchesBlackScholesWithoutDividend(t *testing.T) {
	p := OptionParams{Spot: 90, Strike: 100, Time: 2, Rate: 0.02, Dividend: 0, Vol: 0.35, IsCall: true}
	m, err := Merton{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	bs, err := BlackScholes{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	assertFloatEqual(t, m, bs, 1e-12)
}

func TestAmericanCallNoDividendMatchesEuropean(t *testing.T) {
	// Early exercise of a call is never optimal without dividends.
	p := OptionParams{Spot: 100, Strike: 95, Time: 1, Rate: 0.05, Vol: 0.2, IsCall: true}
	am, err := American{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	eu, err := BlackScholes{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	assertFloatEqual(t, am, eu, 1e-10)
}

func TestAmericanPutPremium(t *testing.T) {
	p := OptionParams{Spot: 90, Strike: 100, Time: 1, Rate: 0.08, Vol: 0.2, IsCall: false}
	am, err := American{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	eu, err := BlackScholes{}.Price(p)
	if err != nil {
		t.Fatal(err)
	}
	if am <= eu {
		t.Fatalf("american put %v should exceed european %v under high rates", am, eu)
	}
	intrinsic := p.Strike - p.Spot
	if am < intrinsic-1e-9 {
		t.Fatalf("american put %v below intrinsic %v", am, intrinsic)
	}
}

func TestAmericanGreeksFinite(t *testing.T) {
	p := OptionParams{Spot: 100, Strike: 110, Time: 0.5, Rate: 0.05, Dividend: 0.02, Vol: 0.25, IsCall: false}
	g, err := American{}.Greeks(p)
	if err != nil {
		t.Fatal(err)
	}
	for name, v := range map[string]float64{
		"delta": g.Delta, "gamma": g.Gamma, "vega": g.Vega,
		"theta": g.Theta, "rho": g.Rho, "dividend_rho": g.DividendRho,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v", name, v)
		}
	}
	if g.Delta >= 0 || g.Delta <= -1 {
		t.Errorf("put delta %v outside (-1, 0)", g.Delta)
	}
	if g.Gamma <= 0 || g.Vega <= 0 {
		t.Errorf("gamma %v and vega %v should be positive", g.Gamma, g.Vega)
	}
}

func TestInvalidInputs(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*OptionParams)
		field string
	}{
		{"zero spot", func(p *OptionParams) { p.Spot = 0 }, "spot"},
		{"negative strike", func(p *OptionParams) { p.Strike = -5 }, "strike"},
		{"zero time", func(p *OptionParams) { p.Time = 0 }, "time"},
		{"negative vol", func(p *OptionParams) { p.Vol = -0.1 }, "vol"},
		{"nan rate", func(p *OptionParams) { p.Rate = math.NaN() }, "rate"},
		{"inf dividend", func(p *OptionParams) { p.Dividend = math.Inf(1) }, "dividend"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := atmParams
			tc.edit(&p)
			_, err := BlackScholes{}.Price(p)
			var inv *InvalidInputError
			if !errors.As(err, &inv) {
				t.Fatalf("want InvalidInputError, got %v", err)
			}
			if inv.Field != tc.field {
				t.Errorf("field = %q, want %q", inv.Field, tc.field)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "black_scholes", "merton", "black76", "american"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("heston"); err == nil {
		t.Error("ByName should reject unknown models")
	}
}

func BenchmarkBlackScholesPrice(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = BlackScholes{}.Price(atmParams)
	}
}

func BenchmarkAmericanGreeks(b *testing.B) {
	p := OptionParams{Spot: 100, Strike: 100, Time: 1, Rate: 0.05, Dividend: 0.02, Vol: 0.2, IsCall: false}
	for i := 0; i < b.N; i++ {
		_, _ = American{}.Greeks(p)
	}
}
