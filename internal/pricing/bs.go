package pricing

import (
	"math"
	"strings"
)

const sqrt2Pi = 2.5066282746310002

// Kind selects the payoff of a European option.
type Kind string

const (
	Call Kind = "call"
	Put  Kind = "put"
)

// ParseKind maps user input ("call", "C", "put", "p", ...) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", &InputError{Field: "kind", Reason: "must be call or put, got " + s}
}

// Quote holds the inputs of a single Black-Scholes valuation.
type Quote struct {
	Spot       float64 `json:"spot"`       // underlying price
	Strike     float64 `json:"strike"`     // strike price
	Rate       float64 `json:"rate"`       // continuously compounded risk-free rate, may be negative
	Maturity   float64 `json:"maturity"`   // time to expiry in years
	Volatility float64 `json:"volatility"` // annualized volatility as a decimal
	Kind       Kind    `json:"kind"`
}

// Validate reports the first field that cannot be priced.
func (q Quote) Validate() error {
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"spot", q.Spot},
		{"strike", q.Strike},
		{"maturity", q.Maturity},
		{"volatility", q.Volatility},
	}
	for _, f := range nonNegative {
		if err := checkFinite(f.name, f.v); err != nil {
			return err
		}
		if f.v < 0 {
			return &InputError{Field: f.name, Value: f.v, Reason: "must not be negative"}
		}
	}
	if err := checkFinite("rate", q.Rate); err != nil {
		return err
	}
	if q.Kind != Call && q.Kind != Put {
		return &InputError{Field: "kind", Reason: "must be call or put, got " + string(q.Kind)}
	}
	return nil
}

// Price calculates the theoretical value of a European option using the
// Black-Scholes model.
//
// Degenerate inputs are priced by their limits:
//   - Maturity == 0: intrinsic value.
//   - Volatility == 0: discounted forward payoff, max(S-K·e^{-rT}, 0) for a call.
//   - Strike == 0: a call is worth the spot, a put nothing.
//   - Spot == 0: a call is worth nothing, a put the discounted strike.
//
// Returns ErrInvalidInput (as *InputError) when the quote fails Validate or
// the arithmetic leaves the float64 range. The result is never negative.
func Price(q Quote) (float64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	p := price(q)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, &InputError{Field: "quote", Reason: "price overflows float64"}
	}
	if p < 0 {
		// rounding noise deep out of the money
		p = 0
	}
	return p, nil
}

// PriceOf is Price with positional arguments.
func PriceOf(spot, strike, rate, maturity, volatility float64, kind Kind) (float64, error) {
	return Price(Quote{
		Spot:       spot,
		Strike:     strike,
		Rate:       rate,
		Maturity:   maturity,
		Volatility: volatility,
		Kind:       kind,
	})
}

// price assumes a validated quote.
func price(q Quote) float64 {
	S, K, r, T, sigma := q.Spot, q.Strike, q.Rate, q.Maturity, q.Volatility

	if T == 0 {
		return intrinsic(q.Kind, S, K)
	}

	discK := K * math.Exp(-r*T)

	switch {
	case K == 0:
		if q.Kind == Call {
			return S
		}
		return 0
	case S == 0:
		if q.Kind == Call {
			return 0
		}
		return discK
	case sigma == 0:
		return intrinsic(q.Kind, S, discK)
	}

	d1, d2, ok := dParams(S, K, r, T, sigma)
	if !ok {
		// sigma·sqrt(T) below float64 resolution: the zero volatility limit
		return intrinsic(q.Kind, S, discK)
	}
	if q.Kind == Call {
		return S*normCDF(d1) - discK*normCDF(d2)
	}
	return discK*normCDF(-d2) - S*normCDF(-d1)
}

func intrinsic(kind Kind, S, K float64) float64 {
	if kind == Call {
		return math.Max(S-K, 0)
	}
	return math.Max(K-S, 0)
}

// dParams returns d1 and d2. Each term is divided separately so a huge
// sigma·sqrt(T) sends d1 to +Inf and d2 to -Inf instead of NaN.
// ok is false when sigma·sqrt(T) underflows to zero or a subnormal that
// leaves d1 undefined.
func dParams(S, K, r, T, sigma float64) (d1, d2 float64, ok bool) {
	v := sigma * math.Sqrt(T)
	if v == 0 {
		return 0, 0, false
	}
	base := math.Log(S/K)/v + r*T/v
	d1, d2 = base+v/2, base-v/2
	if math.IsNaN(d1) || math.IsNaN(d2) {
		return 0, 0, false
	}
	return d1, d2, true
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InputError{Field: field, Value: v, Reason: "must be finite"}
	}
	return nil
}

// normPDF calculates the probability density function of the standard normal distribution.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF computes the cumulative distribution function of the standard
// normal distribution. Erfc keeps full relative precision in the lower tail,
// where 1+Erf would cancel.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// NormCDF exposes the standard normal CDF used by the pricer.
func NormCDF(x float64) float64 {
	return normCDF(x)
}
