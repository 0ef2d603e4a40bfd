package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
)

// ErrNoData is returned when no provider in the chain knows the ticker.
var ErrNoData = errors.New("no market data")

// Provider supplies the current spot price of an underlying.
type Provider interface {
	Name() string
	Secondary() Provider
	Spot(ctx context.Context, ticker string) (float64, error)
}

// NewProvider builds the provider chain described by cfg. The static table
// always sits at the end of the chain so configured spots act as a fallback
// for the remote vendor.
func NewProvider(cfg config.MarketConfig) Provider {
	static := NewStaticSpotProvider(cfg.Spots)

	switch cfg.Provider {
	case "massive":
		logger.Infof("massive spot provider enabled, static fallback with %d tickers", len(cfg.Spots))
		return NewMassiveSpotProvider(MassiveOptions{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			Retries:   cfg.Retries,
			Secondary: static,
		})
	default:
		logger.Infof("static spot provider enabled with %d tickers", len(cfg.Spots))
		return static
	}
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// fallback delegates to secondary after primary failed with cause.
// The returned error keeps cause when the secondary cannot help either.
func fallback(ctx context.Context, secondary Provider, ticker string, cause error) (float64, error) {
	if secondary == nil {
		return 0, cause
	}
	logger.Debugf("spot %s: delegating to %s after: %v", ticker, secondary.Name(), cause)

	spot, err := secondary.Spot(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("%w; %s: %v", cause, secondary.Name(), err)
	}
	return spot, nil
}
