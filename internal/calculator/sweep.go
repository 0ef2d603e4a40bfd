package calculator

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// MaxSweepPoints bounds the size of a scenario sweep.
const MaxSweepPoints = 10000

// Axis is the quote input varied by a sweep.
type Axis string

const (
	AxisSpot       Axis = "spot"
	AxisStrike     Axis = "strike"
	AxisRate       Axis = "rate"
	AxisMaturity   Axis = "maturity"
	AxisVolatility Axis = "volatility"
)

// Sweep describes a scenario range: From..To inclusive in steps of Step.
type Sweep struct {
	Axis Axis
	From float64
	To   float64
	Step float64
}

// ParseSweep parses "axis:from:to:step", e.g. "spot:80:120:5".
func ParseSweep(s string) (Sweep, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Sweep{}, &pricing.InputError{Field: "sweep", Reason: "want axis:from:to:step, got " + s}
	}

	sw := Sweep{Axis: Axis(strings.ToLower(strings.TrimSpace(parts[0])))}
	nums := make([]float64, 3)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Sweep{}, &pricing.InputError{Field: "sweep", Reason: "bad number " + p}
		}
		nums[i] = v
	}
	sw.From, sw.To, sw.Step = nums[0], nums[1], nums[2]
	return sw, sw.validate()
}

func (sw Sweep) validate() error {
	switch sw.Axis {
	case AxisSpot, AxisStrike, AxisRate, AxisMaturity, AxisVolatility:
	default:
		return &pricing.InputError{Field: "sweep", Reason: "unknown axis " + string(sw.Axis)}
	}
	for _, v := range []float64{sw.From, sw.To, sw.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &pricing.InputError{Field: "sweep", Value: v, Reason: "must be finite"}
		}
	}
	if sw.Step <= 0 {
		return &pricing.InputError{Field: "sweep", Value: sw.Step, Reason: "step must be positive"}
	}
	if sw.To < sw.From {
		return &pricing.InputError{Field: "sweep", Value: sw.To, Reason: "end is below start"}
	}
	if sw.points() > MaxSweepPoints {
		return &pricing.InputError{Field: "sweep", Reason: "too many points"}
	}
	return nil
}

// points counts the grid values, tolerating rounding in (To-From)/Step.
func (sw Sweep) points() int {
	n := math.Floor((sw.To-sw.From)/sw.Step + 1e-9)
	if n >= MaxSweepPoints {
		return MaxSweepPoints + 1
	}
	return int(n) + 1
}

// Sweep prices the form once per grid value of sw.Axis. The spot is resolved
// once, so a ticker triggers a single market data lookup.
func (s *Service) Sweep(ctx context.Context, f Form, sw Sweep) (out []Result, err error) {
	start := time.Now()
	kind := "unknown"
	defer func() { s.metrics.ObservePricing("sweep", kind, outcome(err), start) }()

	if err := sw.validate(); err != nil {
		return nil, err
	}

	base, source, err := s.resolve(ctx, f)
	if err != nil {
		return nil, err
	}
	kind = string(base.Kind)
	if sw.Axis == AxisSpot {
		source = SourceForm
	}

	n := sw.points()
	out = make([]Result, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q := base
		v := sw.From + float64(i)*sw.Step
		switch sw.Axis {
		case AxisSpot:
			q.Spot = v
		case AxisStrike:
			q.Strike = v
		case AxisRate:
			q.Rate = v
		case AxisMaturity:
			q.Maturity = v
		case AxisVolatility:
			q.Volatility = v
		}

		res, err := s.price(q)
		if err != nil {
			return nil, err
		}
		res.SpotSource = source
		out = append(out, *res)
	}

	logger.Debugf("sweep %s %g..%g step %g: %d points", sw.Axis, sw.From, sw.To, sw.Step, len(out))
	return out, nil
}
