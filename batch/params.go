// Package batch drives pricing operations over broadcast parameter arrays,
// choosing between a sequential loop and a chunked worker pool by measured
// batch size.
package batch

import (
	"fmt"

	"github.com/drillan/quantforge/models"
)

// ParameterSet is one batch call's named inputs. Every slice has length 1
// (a scalar broadcast across the batch) or the common batch length L. The
// slices are caller-owned and are read in place; nothing is copied. Price is
// only consulted by implied-volatility runs, Vol only by price/greeks runs.
// A nil Dividend broadcasts zero; leaving any other consulted input nil is a
// MissingInputError.
type ParameterSet struct {
	Spot     []float64
	Strike   []float64
	Time     []float64
	Rate     []float64
	Dividend []float64
	Vol      []float64
	Price    []float64
	IsCall   bool
}

// ShapeMismatchError reports an input whose length is neither 1 nor the
// batch length.
type ShapeMismatchError struct {
	Input string
	Len   int
	Want  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("batch: input %s has length %d, want 1 or %d", e.Input, e.Len, e.Want)
}

// MissingInputError reports a required input that was not supplied at all.
// A nil slice is an omitted input; an explicit empty slice is a legal
// length-0 column.
type MissingInputError struct {
	Input string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("batch: required input %s is missing", e.Input)
}

type input struct {
	name string
	vals []float64
}

// resolveLength returns the broadcast batch length L. Rules: a nil input was
// never supplied and is an error; a length-1 input is a constant; all longer
// inputs must share one length L; an explicit length-0 input forces L=0 (an
// empty batch) and is only compatible with lengths 0 and 1.
func resolveLength(inputs []input) (int, error) {
	length := 1
	empty := false
	for _, in := range inputs {
		if in.vals == nil {
			return 0, &MissingInputError{Input: in.name}
		}
		switch n := len(in.vals); n {
		case 0:
			empty = true
		case 1:
		default:
			if length != 1 && n != length {
				return 0, &ShapeMismatchError{Input: in.name, Len: n, Want: length}
			}
			length = n
		}
	}
	if empty {
		for _, in := range inputs {
			if len(in.vals) > 1 {
				return 0, &ShapeMismatchError{Input: in.name, Len: len(in.vals), Want: 0}
			}
		}
		return 0, nil
	}
	return length, nil
}

// at is the broadcast accessor: the sole value for a scalar input, the i-th
// element otherwise.
func at(vals []float64, i int) float64 {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals[i]
}

var zeroScalar = []float64{0}

// orZero substitutes a zero scalar for an omitted optional input.
func orZero(vals []float64) []float64 {
	if vals == nil {
		return zeroScalar
	}
	return vals
}

// pricingInputs are the inputs participating in price and greeks runs.
func (ps *ParameterSet) pricingInputs() []input {
	return []input{
		{"spot", ps.Spot},
		{"strike", ps.Strike},
		{"time", ps.Time},
		{"rate", ps.Rate},
		{"dividend", orZero(ps.Dividend)},
		{"vol", ps.Vol},
	}
}

// impliedVolInputs swap the vol input for the observed price.
func (ps *ParameterSet) impliedVolInputs() []input {
	return []input{
		{"spot", ps.Spot},
		{"strike", ps.Strike},
		{"time", ps.Time},
		{"rate", ps.Rate},
		{"dividend", orZero(ps.Dividend)},
		{"price", ps.Price},
	}
}

// paramsAt materializes the i-th parameter tuple for the pricing models.
func (ps *ParameterSet) paramsAt(i int) models.OptionParams {
	return models.OptionParams{
		Spot:     at(ps.Spot, i),
		Strike:   at(ps.Strike, i),
		Time:     at(ps.Time, i),
		Rate:     at(ps.Rate, i),
		Dividend: at(orZero(ps.Dividend), i),
		Vol:      at(ps.Vol, i),
		IsCall:   ps.IsCall,
	}
}

// solveParamsAt is paramsAt without the vol input, for implied-vol runs.
func (ps *ParameterSet) solveParamsAt(i int) models.OptionParams {
	return models.OptionParams{
		Spot:     at(ps.Spot, i),
		Strike:   at(ps.Strike, i),
		Time:     at(ps.Time, i),
		Rate:     at(ps.Rate, i),
		Dividend: at(orZero(ps.Dividend), i),
		IsCall:   ps.IsCall,
	}
}
