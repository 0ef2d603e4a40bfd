package pricing

import "math"

// Greeks are the first-order sensitivities of a Black-Scholes price, plus gamma.
//
// Vega is per 1.00 of volatility, Theta per year, Rho per 1.00 of rate.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// CalculateGreeks returns the sensitivities of q.
//
// When the price has no time value (zero maturity, volatility, spot or strike)
// only Delta is reported, as the slope of the degenerate payoff; the other
// fields are zero.
func CalculateGreeks(q Quote) (Greeks, error) {
	if err := q.Validate(); err != nil {
		return Greeks{}, err
	}

	S, K, r, T, sigma := q.Spot, q.Strike, q.Rate, q.Maturity, q.Volatility
	if T == 0 || sigma == 0 || S == 0 || K == 0 {
		return Greeks{Delta: degenerateDelta(q)}, nil
	}

	d1, d2, ok := dParams(S, K, r, T, sigma)
	if !ok {
		return Greeks{Delta: degenerateDelta(q)}, nil
	}
	sqrtT := math.Sqrt(T)
	pdf := normPDF(d1)
	discK := K * math.Exp(-r*T)

	g := Greeks{Vega: S * pdf * sqrtT}
	if pdf > 0 {
		// pdf is zero for an infinite d1, where S·sigma·sqrt(T) may also be
		g.Gamma = pdf / (S * sigma * sqrtT)
	}
	decay := -S * pdf * sigma / (2 * sqrtT)
	if q.Kind == Call {
		g.Delta = normCDF(d1)
		g.Theta = decay - r*discK*normCDF(d2)
		g.Rho = T * discK * normCDF(d2)
	} else {
		g.Delta = normCDF(d1) - 1
		g.Theta = decay + r*discK*normCDF(-d2)
		g.Rho = -T * discK * normCDF(-d2)
	}
	return g, nil
}

func degenerateDelta(q Quote) float64 {
	if q.Strike == 0 {
		if q.Kind == Call {
			return 1
		}
		return 0
	}
	k := q.Strike * math.Exp(-q.Rate*q.Maturity)
	if q.Kind == Call {
		if q.Spot > k {
			return 1
		}
		return 0
	}
	if q.Spot < k {
		return -1
	}
	return 0
}

// Vega calculates the sensitivity of the option price to volatility.
// Returns 0 when maturity or volatility is zero.
func Vega(q Quote) (float64, error) {
	g, err := CalculateGreeks(q)
	if err != nil {
		return 0, err
	}
	return g.Vega, nil
}
