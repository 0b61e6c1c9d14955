// Package batchio reads batch requests from disk, runs them through the
// pricing engine and writes the results back as JSON.
package batchio

import (
	"fmt"
	"math"
	"os"

	"github.com/xhhuango/json"

	"github.com/drillan/quantforge/batch"
	"github.com/drillan/quantforge/models"
)

// LoadRequest parses a request file.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("batchio: parsing %s: %w", path, err)
	}
	switch req.Operation {
	case OpPrice, OpGreeks, OpImpliedVol:
	default:
		return nil, fmt.Errorf("batchio: unknown operation %q", req.Operation)
	}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("batchio: %s: %w", path, err)
	}
	return &req, nil
}

// validate checks that every column the operation consults is present.
// Dividend is optional everywhere; price/greeks need vol, implied_vol needs
// the observed price.
func (r *Request) validate() error {
	required := map[string][]float64{
		"spot":   r.Spot,
		"strike": r.Strike,
		"time":   r.Time,
		"rate":   r.Rate,
	}
	if r.Operation == OpImpliedVol {
		required["price"] = r.Price
	} else {
		required["vol"] = r.Vol
	}
	for name, vals := range required {
		if vals == nil {
			return fmt.Errorf("operation %s requires column %s", r.Operation, name)
		}
	}
	return nil
}

// ParameterSet maps the request columns onto the engine's input form.
func (r *Request) ParameterSet() *batch.ParameterSet {
	return &batch.ParameterSet{
		Spot:     r.Spot,
		Strike:   r.Strike,
		Time:     r.Time,
		Rate:     r.Rate,
		Dividend: r.Dividend,
		Vol:      r.Vol,
		Price:    r.Price,
		IsCall:   r.IsCall,
	}
}

// Run executes the request and packages the outputs. progress may be nil.
func (r *Request) Run(progress func(done int)) (*Result, error) {
	model, err := models.ByName(r.Model)
	if err != nil {
		return nil, err
	}
	engine := batch.New(model)
	engine.Progress = progress
	ps := r.ParameterSet()

	res := &Result{Model: model.Name(), Operation: r.Operation}
	switch r.Operation {
	case OpPrice:
		res.Values, err = engine.Prices(ps)
	case OpGreeks:
		var greeks []models.Greeks
		greeks, err = engine.Greeks(ps)
		res.Greeks = FromGreeks(greeks)
	case OpImpliedVol:
		res.Values, err = engine.ImpliedVols(ps)
	default:
		err = fmt.Errorf("batchio: unknown operation %q", r.Operation)
	}
	if err != nil {
		return nil, err
	}
	if res.Values != nil {
		res.Length = len(res.Values)
	} else {
		res.Length = len(res.Greeks)
	}
	return res, nil
}

// FromGreeks converts engine sensitivity records to their serialized form.
func FromGreeks(gs []models.Greeks) []GreeksRecord {
	if gs == nil {
		return nil
	}
	out := make([]GreeksRecord, len(gs))
	for i, g := range gs {
		out[i] = GreeksRecord{
			Delta:       g.Delta,
			Gamma:       g.Gamma,
			Vega:        g.Vega,
			Theta:       g.Theta,
			Rho:         g.Rho,
			DividendRho: g.DividendRho,
		}
	}
	return out
}

// Length returns the number of elements the request will produce, counting
// the longest input column.
func (r *Request) Length() int {
	n := 1
	for _, col := range [][]float64{r.Spot, r.Strike, r.Time, r.Rate, r.Dividend, r.Vol, r.Price} {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

// WriteResult marshals a result to path. JSON has no NaN literal, so failed
// elements serialize as zero.
func WriteResult(path string, res *Result) error {
	clean := *res
	if res.Values != nil {
		clean.Values = make([]float64, len(res.Values))
		for i, v := range res.Values {
			clean.Values[i] = sanitizeFloat(v)
		}
	}
	if res.Greeks != nil {
		clean.Greeks = make([]GreeksRecord, len(res.Greeks))
		for i, g := range res.Greeks {
			clean.Greeks[i] = GreeksRecord{
				Delta:       sanitizeFloat(g.Delta),
				Gamma:       sanitizeFloat(g.Gamma),
				Vega:        sanitizeFloat(g.Vega),
				Theta:       sanitizeFloat(g.Theta),
				Rho:         sanitizeFloat(g.Rho),
				DividendRho: sanitizeFloat(g.DividendRho),
			}
		}
	}
	data, err := json.Marshal(&clean)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func sanitizeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
