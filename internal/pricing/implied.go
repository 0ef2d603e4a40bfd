package pricing

import (
	"math"
)

const (
	minVol = 0.0
	maxVol = 10.0
)

// ImpliedVol solves for the volatility at which Price(q) equals premium.
// q.Volatility is ignored.
//
// It starts from the Brenner-Subrahmanyam estimate and takes Newton-Raphson
// steps, falling back to bisection whenever a step leaves the bracket or vega
// vanishes.
//
// Returns ErrInvalidInput when the quote is invalid, maturity is zero, the
// price does not depend on volatility, or premium lies outside the
// no-arbitrage bounds. Returns ErrNoConvergence when the premium needs a
// volatility above 1000% or the iteration budget runs out.
func ImpliedVol(q Quote, premium float64) (float64, error) {
	q.Volatility = 0
	if err := q.Validate(); err != nil {
		return 0, err
	}
	if err := checkFinite("premium", premium); err != nil {
		return 0, err
	}
	if q.Maturity == 0 {
		return 0, &InputError{Field: "maturity", Reason: "must be positive to imply volatility"}
	}
	if q.Spot == 0 || q.Strike == 0 {
		return 0, &InputError{Field: "quote", Reason: "price does not depend on volatility"}
	}

	lower := price(q)
	upper := q.Spot
	if q.Kind == Put {
		upper = q.Strike * math.Exp(-q.Rate*q.Maturity)
	}
	if premium < lower || premium >= upper {
		return 0, &InputError{Field: "premium", Value: premium, Reason: "outside no-arbitrage bounds"}
	}
	if premium == lower {
		return 0, nil
	}

	const (
		maxIter = 200
		tol     = 1e-10
	)

	lo, hi := minVol, maxVol
	if at(q, hi) < premium {
		return 0, ErrNoConvergence
	}

	sigma := math.Sqrt(2*math.Pi/q.Maturity) * premium / q.Spot
	if sigma <= lo || sigma >= hi {
		sigma = 0.2
	}

	for i := 0; i < maxIter; i++ {
		diff := at(q, sigma) - premium
		if math.Abs(diff) < tol {
			return sigma, nil
		}

		// price is increasing in sigma
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}
		if hi-lo < 1e-14 {
			return sigma, nil
		}

		next := math.NaN()
		q.Volatility = sigma
		if g, err := CalculateGreeks(q); err == nil && g.Vega > 1e-12 {
			next = sigma - diff/g.Vega
		}
		if math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		sigma = next
	}

	return 0, ErrNoConvergence
}

func at(q Quote, sigma float64) float64 {
	q.Volatility = sigma
	return price(q)
}
