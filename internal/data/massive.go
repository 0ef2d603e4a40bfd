// Package data provides market data provider implementations.
//
// This file contains a Massive-backed Provider that reads the previous
// trading day's close from the aggregates endpoint and uses it as spot.
// Massive serves the Polygon.io API surface, so a Polygon base URL works too.
package data

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/contactkeval/option-pricer/internal/logger"
)

const defaultMassiveBaseURL = "https://api.massive.com"

// MassiveOptions configures NewMassiveSpotProvider. Zero values fall back to
// sensible defaults.
type MassiveOptions struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	Secondary Provider
}

// massiveSpotProvider implements the Provider interface using Massive APIs.
type massiveSpotProvider struct {
	apiKey    string
	client    *resty.Client
	secondary Provider
}

// massivePrevCloseResp models /v2/aggs/ticker/{ticker}/prev.
type massivePrevCloseResp struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Open      float64 `json:"o"`
		Close     float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Volume    float64 `json:"v"`
		Timestamp int64   `json:"t"` // epoch millis
	} `json:"results"`
	Message string `json:"message"`
}

// NewMassiveSpotProvider constructs a Massive-backed spot provider.
//
// The resty client retries transport errors, HTTP 429 and 5xx responses up to
// opts.Retries times with exponential backoff starting at opts.RetryWait.
func NewMassiveSpotProvider(opts MassiveOptions) Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultMassiveBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}

	logger.Infof("initializing Massive spot provider at %s", opts.BaseURL)

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "option-pricer/1.0").
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(10 * opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	if opts.APIKey != "" {
		client.SetAuthToken(opts.APIKey)
	}

	return &massiveSpotProvider{
		apiKey:    opts.APIKey,
		client:    client,
		secondary: opts.Secondary,
	}
}

func (massiveProv *massiveSpotProvider) Name() string { return "massive" }

// Secondary returns the configured secondary Provider, if any.
func (massiveProv *massiveSpotProvider) Secondary() Provider {
	return massiveProv.secondary
}

// Spot returns the previous session's adjusted close for ticker.
// On any failure the request is delegated to the secondary provider.
func (massiveProv *massiveSpotProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	spot, err := massiveProv.prevClose(ctx, NormalizeTicker(ticker))
	if err != nil {
		return fallback(ctx, massiveProv.secondary, ticker, err)
	}
	return spot, nil
}

func (massiveProv *massiveSpotProvider) prevClose(ctx context.Context, ticker string) (float64, error) {
	logger.Debugf("massive prev close request: %s", ticker)

	var body massivePrevCloseResp
	resp, err := massiveProv.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParam("adjusted", "true").
		SetQueryParam("apiKey", massiveProv.apiKey).
		SetResult(&body).
		SetError(&body).
		Get("/v2/aggs/ticker/{ticker}/prev")
	if err != nil {
		logger.Errorf("massive prev close request failed: %v", err)
		return 0, fmt.Errorf("massive api request failed: %w", err)
	}

	if resp.IsError() {
		logger.Errorf("massive prev close API error status=%d message=%s", resp.StatusCode(), body.Message)
		return 0, fmt.Errorf("massive returned status %d: %s", resp.StatusCode(), body.Message)
	}

	logger.Tracef("massive prev close: %d results for %s", len(body.Results), ticker)

	if len(body.Results) == 0 {
		return 0, fmt.Errorf("%w for %s from massive", ErrNoData, ticker)
	}
	return body.Results[0].Close, nil
}
