package batchio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "req.json")
	body := `{
		"model": "black_scholes",
		"operation": "price",
		"is_call": true,
		"spot": [100],
		"strike": [90, 100, 110],
		"time": [1],
		"rate": [0.05],
		"vol": [0.2]
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	req, err := LoadRequest(path)
	if err != nil {
		t.Fatal(err)
	}
	if req.Operation != OpPrice || !req.IsCall {
		t.Errorf("parsed request = %+v", req)
	}
	if req.Length() != 3 {
		t.Errorf("Length = %d, want 3", req.Length())
	}
}

func TestLoadRequestRejectsUnknownOperation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	if err := os.WriteFile(path, []byte(`{"operation": "gamma_scalp"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRequest(path); err == nil {
		t.Fatal("unknown operation should fail to load")
	}
}

func TestLoadRequestRejectsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		body string
	}{
		{"price without vol", `{
			"operation": "price", "is_call": true,
			"spot": [100], "strike": [100], "time": [1], "rate": [0.05]
		}`},
		{"implied_vol without price", `{
			"operation": "implied_vol", "is_call": true,
			"spot": [100], "strike": [100], "time": [1], "rate": [0.05], "vol": [0.2]
		}`},
		{"greeks without strike", `{
			"operation": "greeks", "is_call": true,
			"spot": [100], "time": [1], "rate": [0.05], "vol": [0.2]
		}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "req.json")
			if err := os.WriteFile(path, []byte(tc.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRequest(path); err == nil {
				t.Fatal("request with a missing required column should fail to load")
			}
		})
	}
}

func TestRunPriceRequest(t *testing.T) {
	req := &Request{
		Model:     "black_scholes",
		Operation: OpPrice,
		IsCall:    true,
		Spot:      []float64{100},
		Strike:    []float64{90, 100, 110},
		Time:      []float64{1},
		Rate:      []float64{0.05},
		Vol:       []float64{0.2},
	}
	res, err := req.Run(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != 3 || len(res.Values) != 3 || res.Greeks != nil {
		t.Fatalf("result = %+v", res)
	}
	if math.Abs(res.Values[1]-10.450583572185565) > 1e-10 {
		t.Errorf("atm price = %v", res.Values[1])
	}
	// Monotone in strike for calls.
	if !(res.Values[0] > res.Values[1] && res.Values[1] > res.Values[2]) {
		t.Errorf("call prices not decreasing in strike: %v", res.Values)
	}
}

func TestRunGreeksRequest(t *testing.T) {
	req := &Request{
		Operation: OpGreeks,
		IsCall:    false,
		Spot:      []float64{100},
		Strike:    []float64{95, 105},
		Time:      []float64{0.5},
		Rate:      []float64{0.03},
		Vol:       []float64{0.25},
	}
	res, err := req.Run(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Model != "black_scholes" {
		t.Errorf("empty model name should default, got %q", res.Model)
	}
	if res.Length != 2 || len(res.Greeks) != 2 || res.Values != nil {
		t.Fatalf("result = %+v", res)
	}
	for i, g := range res.Greeks {
		if g.Delta >= 0 || g.Delta <= -1 {
			t.Errorf("put delta[%d] = %v", i, g.Delta)
		}
	}
}

func TestRunImpliedVolRequest(t *testing.T) {
	price := &Request{
		Operation: OpPrice,
		IsCall:    true,
		Spot:      []float64{100},
		Strike:    []float64{100},
		Time:      []float64{1},
		Rate:      []float64{0.05},
		Vol:       []float64{0.2, 0.3, 0.4},
	}
	priced, err := price.Run(nil)
	if err != nil {
		t.Fatal(err)
	}

	inv := &Request{
		Operation: OpImpliedVol,
		IsCall:    true,
		Spot:      price.Spot,
		Strike:    price.Strike,
		Time:      price.Time,
		Rate:      price.Rate,
		Price:     priced.Values,
	}
	res, err := inv.Run(nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range price.Vol {
		if math.Abs(res.Values[i]-want) > 1e-6 {
			t.Errorf("recovered vol[%d] = %v, want %v", i, res.Values[i], want)
		}
	}
}

func TestWriteResultSanitizesNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res.json")
	res := &Result{
		Model:     "black_scholes",
		Operation: OpPrice,
		Length:    2,
		Values:    []float64{1.5, math.NaN()},
	}
	if err := WriteResult(path, res); err != nil {
		t.Fatal(err)
	}
	// The in-memory result keeps its NaN marker.
	if !math.IsNaN(res.Values[1]) {
		t.Error("WriteResult mutated its input")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty result file")
	}
}
