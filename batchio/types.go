package batchio

// Request is the on-disk form of one batch call. Each numeric field is a
// scalar (length-1 array) or a full column of the batch length.
type Request struct {
	Model     string    `json:"model"`
	Operation string    `json:"operation"`
	IsCall    bool      `json:"is_call"`
	Spot      []float64 `json:"spot"`
	Strike    []float64 `json:"strike"`
	Time      []float64 `json:"time"`
	Rate      []float64 `json:"rate"`
	Dividend  []float64 `json:"dividend,omitempty"`
	Vol       []float64 `json:"vol,omitempty"`
	Price     []float64 `json:"price,omitempty"`
}

// GreeksRecord is the serialized sensitivity record for one element.
type GreeksRecord struct {
	Delta       float64 `json:"delta"`
	Gamma       float64 `json:"gamma"`
	Vega        float64 `json:"vega"`
	Theta       float64 `json:"theta"`
	Rho         float64 `json:"rho"`
	DividendRho float64 `json:"dividend_rho"`
}

// Result is the on-disk form of one batch result. Values carries price or
// implied-vol outputs; Greeks carries sensitivity records. Exactly one of
// the two is set.
type Result struct {
	Model     string         `json:"model"`
	Operation string         `json:"operation"`
	Length    int            `json:"length"`
	Values    []float64      `json:"values,omitempty"`
	Greeks    []GreeksRecord `json:"greeks,omitempty"`
}

// Supported operation names.
const (
	OpPrice      = "price"
	OpGreeks     = "greeks"
	OpImpliedVol = "implied_vol"
)
