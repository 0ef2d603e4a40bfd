// Package calculator is the form behind both front ends: it fills in
// defaults, resolves the spot from market data when only a ticker is given,
// calls the pricing engine once per request and rounds the result for display.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Spot sources reported in Result.SpotSource besides a provider name.
const (
	SourceForm    = "form"
	SourceDefault = "default"
)

// Form carries the raw user input. Nil fields take the configured default.
type Form struct {
	Spot       *float64 `form:"spot"       json:"spot,omitempty"       binding:"omitempty,gte=0"`
	Strike     *float64 `form:"strike"     json:"strike,omitempty"     binding:"omitempty,gte=0"`
	Rate       *float64 `form:"rate"       json:"rate,omitempty"`
	Maturity   *float64 `form:"maturity"   json:"maturity,omitempty"   binding:"omitempty,gte=0"`
	Volatility *float64 `form:"volatility" json:"volatility,omitempty" binding:"omitempty,gte=0"`
	Kind       string   `form:"kind"       json:"kind,omitempty"`
	Ticker     string   `form:"ticker"     json:"ticker,omitempty"     binding:"omitempty,max=16"`
	Premium    *float64 `form:"premium"    json:"premium,omitempty"    binding:"omitempty,gte=0"`
}

// Result is one priced form.
type Result struct {
	Quote      pricing.Quote   `json:"quote"`
	Price      decimal.Decimal `json:"price"`
	RawPrice   float64         `json:"raw_price"`
	Greeks     pricing.Greeks  `json:"greeks"`
	SpotSource string          `json:"spot_source"`
	Ticker     string          `json:"ticker,omitempty"`
}

// VolResult is the answer to an implied volatility request.
type VolResult struct {
	Quote         pricing.Quote   `json:"quote"`
	Premium       float64         `json:"premium"`
	ImpliedVol    decimal.Decimal `json:"implied_vol"`
	RawImpliedVol float64         `json:"raw_implied_vol"`
	SpotSource    string          `json:"spot_source"`
	Ticker        string          `json:"ticker,omitempty"`
}

type Service struct {
	defaults  config.DefaultsConfig
	precision int32
	spots     data.Provider
	metrics   *metrics.Metrics
}

// NewService wires the calculator. spots and m may be nil: without a provider
// a ticker-only request fails with data.ErrNoData, without metrics nothing is
// recorded.
func NewService(defaults config.DefaultsConfig, precision int32, spots data.Provider, m *metrics.Metrics) *Service {
	return &Service{
		defaults:  defaults,
		precision: precision,
		spots:     spots,
		metrics:   m,
	}
}

// Defaults returns the values used for omitted form fields.
func (s *Service) Defaults() config.DefaultsConfig {
	return s.defaults
}

// Price values the form. It calls the pricing engine exactly once.
func (s *Service) Price(ctx context.Context, f Form) (res *Result, err error) {
	start := time.Now()
	kind := "unknown"
	defer func() { s.metrics.ObservePricing("price", kind, outcome(err), start) }()

	q, source, err := s.resolve(ctx, f)
	if err != nil {
		return nil, err
	}
	kind = string(q.Kind)

	res, err = s.price(q)
	if err != nil {
		return nil, err
	}
	res.SpotSource = source
	res.Ticker = data.NormalizeTicker(f.Ticker)

	logger.Debugf("priced %s S=%g K=%g r=%g T=%g sigma=%g -> %s (spot from %s)",
		q.Kind, q.Spot, q.Strike, q.Rate, q.Maturity, q.Volatility, res.Price, source)
	return res, nil
}

// ImpliedVol solves for the volatility matching f.Premium. f.Volatility is ignored.
func (s *Service) ImpliedVol(ctx context.Context, f Form) (res *VolResult, err error) {
	start := time.Now()
	kind := "unknown"
	defer func() { s.metrics.ObservePricing("implied_vol", kind, outcome(err), start) }()

	if f.Premium == nil {
		return nil, &pricing.InputError{Field: "premium", Reason: "is required"}
	}

	q, source, err := s.resolve(ctx, f)
	if err != nil {
		return nil, err
	}
	kind = string(q.Kind)

	sigma, err := pricing.ImpliedVol(q, *f.Premium)
	if err != nil {
		return nil, err
	}
	q.Volatility = sigma

	logger.Debugf("implied vol %s S=%g K=%g premium=%g -> %g", q.Kind, q.Spot, q.Strike, *f.Premium, sigma)
	return &VolResult{
		Quote:         q,
		Premium:       *f.Premium,
		ImpliedVol:    decimal.NewFromFloat(sigma).Round(s.precision),
		RawImpliedVol: sigma,
		SpotSource:    source,
		Ticker:        data.NormalizeTicker(f.Ticker),
	}, nil
}

func (s *Service) price(q pricing.Quote) (*Result, error) {
	p, err := pricing.Price(q)
	if err != nil {
		return nil, err
	}
	g, err := pricing.CalculateGreeks(q)
	if err != nil {
		return nil, err
	}
	return &Result{
		Quote:    q,
		Price:    decimal.NewFromFloat(p).Round(s.precision),
		RawPrice: p,
		Greeks:   g,
	}, nil
}

// resolve merges the form with the defaults and looks up the spot if needed.
func (s *Service) resolve(ctx context.Context, f Form) (pricing.Quote, string, error) {
	d := s.defaults
	q := pricing.Quote{
		Spot:       pick(f.Spot, d.Spot),
		Strike:     pick(f.Strike, d.Strike),
		Rate:       pick(f.Rate, d.Rate),
		Maturity:   pick(f.Maturity, d.Maturity),
		Volatility: pick(f.Volatility, d.Volatility),
	}

	kindInput := f.Kind
	if kindInput == "" {
		kindInput = d.Kind
	}
	kind, err := pricing.ParseKind(kindInput)
	if err != nil {
		return q, "", err
	}
	q.Kind = kind

	switch {
	case f.Spot != nil:
		return q, SourceForm, nil
	case f.Ticker != "":
		spot, source, err := s.lookupSpot(ctx, f.Ticker)
		if err != nil {
			return q, "", err
		}
		q.Spot = spot
		return q, source, nil
	default:
		return q, SourceDefault, nil
	}
}

func (s *Service) lookupSpot(ctx context.Context, ticker string) (float64, string, error) {
	if s.spots == nil {
		return 0, "", fmt.Errorf("%w: no spot provider configured for %s", data.ErrNoData, ticker)
	}

	name := s.spots.Name()
	spot, err := s.spots.Spot(ctx, ticker)
	if err != nil {
		s.metrics.ObserveSpot(name, metrics.OutcomeError)
		logger.Warnf("spot lookup for %s failed: %v", ticker, err)
		return 0, "", fmt.Errorf("spot for %s: %w", ticker, err)
	}
	s.metrics.ObserveSpot(name, metrics.OutcomeOK)
	return spot, name, nil
}

func pick(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, pricing.ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
