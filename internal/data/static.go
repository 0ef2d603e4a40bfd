package data

import (
	"context"
	"fmt"
)

// staticSpotProvider serves spots from a fixed table, typically the
// market.spots section of the config. It is always the last link of a
// provider chain.
type staticSpotProvider struct {
	spots map[string]float64
}

// NewStaticSpotProvider copies spots, normalizing the tickers.
func NewStaticSpotProvider(spots map[string]float64) Provider {
	table := make(map[string]float64, len(spots))
	for ticker, spot := range spots {
		table[NormalizeTicker(ticker)] = spot
	}
	return &staticSpotProvider{spots: table}
}

func (staticProv *staticSpotProvider) Name() string { return "static" }

func (staticProv *staticSpotProvider) Secondary() Provider { return nil }

func (staticProv *staticSpotProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if spot, ok := staticProv.spots[NormalizeTicker(ticker)]; ok {
		return spot, nil
	}
	return 0, fmt.Errorf("%w for %s", ErrNoData, ticker)
}
