package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedVolRoundTrip(t *testing.T) {
	quotes := []Quote{
		atm(Call),
		atm(Put),
		{Spot: 581.39, Strike: 580, Rate: 0.045, Maturity: 16.0 / 365, Kind: Call},
		{Spot: 90, Strike: 120, Rate: 0.01, Maturity: 2, Kind: Put},
		{Spot: 150, Strike: 100, Rate: -0.005, Maturity: 0.5, Kind: Call},
	}

	for _, q := range quotes {
		for _, sigma := range []float64{0.05, 0.2, 0.65, 1.5, 3} {
			q.Volatility = sigma
			premium, err := Price(q)
			require.NoError(t, err)

			got, err := ImpliedVol(q, premium)
			require.NoError(t, err, "%+v", q)

			q.Volatility = got
			back, err := Price(q)
			require.NoError(t, err)
			assert.InDelta(t, premium, back, 1e-6, "%+v", q)
		}
	}
}

func TestImpliedVolATMReference(t *testing.T) {
	sigma, err := ImpliedVol(atm(Call), 10.450583572185565)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, sigma, 1e-8)
}

func TestImpliedVolBounds(t *testing.T) {
	q := atm(Call)

	_, err := ImpliedVol(q, 100)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ImpliedVol(q, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	q.Maturity = 0
	_, err = ImpliedVol(q, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	q = atm(Call)
	q.Strike = 0
	_, err = ImpliedVol(q, 50)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImpliedVolAtLowerBound(t *testing.T) {
	q := atm(Call)
	q.Volatility = 0
	lower, err := Price(q)
	require.NoError(t, err)

	sigma, err := ImpliedVol(q, lower)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sigma)
}

func TestImpliedVolAboveSearchRange(t *testing.T) {
	q := atm(Call)
	q.Volatility = maxVol
	ceiling, err := Price(q)
	require.NoError(t, err)

	_, err = ImpliedVol(q, (ceiling+q.Spot)/2)
	assert.ErrorIs(t, err, ErrNoConvergence)
}
