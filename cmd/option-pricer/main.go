package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-pricer/internal/api"
	"github.com/contactkeval/option-pricer/internal/calculator"
	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/report"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("option-pricer", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config (optional)")
	serve := fs.Bool("serve", false, "run as REST server")
	addr := fs.String("addr", "", "REST server listen address (overrides config)")
	verbosity := fs.Int("v", -1, "verbosity 0=errors,1=info,2=debug,3=trace (overrides config)")

	spot := fs.Float64("spot", 0, "current underlying price")
	strike := fs.Float64("strike", 0, "strike price")
	rate := fs.Float64("rate", 0, "risk-free rate, continuously compounded")
	maturity := fs.Float64("maturity", 0, "time to maturity in years")
	vol := fs.Float64("vol", 0, "annualized volatility")
	kind := fs.String("kind", "", "option kind: call or put")
	ticker := fs.String("ticker", "", "look up spot for this underlying when -spot is not given")
	premium := fs.Float64("premium", 0, "solve for implied volatility at this option price")
	sweep := fs.String("sweep", "", "price a scenario range, axis:from:to:step (e.g. spot:80:120:5)")
	reportDir := fs.String("report", "", "write quotes.json and quotes.csv to this directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	logger.SetFormat(cfg.Log.Format)
	logger.SetVerbosity(cfg.Log.Verbosity)

	m := metrics.New()
	svc := calculator.NewService(cfg.Defaults, cfg.Precision, data.NewProvider(cfg.Market), m)

	if *serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg.Server, svc, m).Run(ctx)
	}

	// Only flags the user actually passed override the defaults.
	form := calculator.Form{Kind: *kind, Ticker: *ticker}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["spot"] {
		form.Spot = spot
	}
	if set["strike"] {
		form.Strike = strike
	}
	if set["rate"] {
		form.Rate = rate
	}
	if set["maturity"] {
		form.Maturity = maturity
	}
	if set["vol"] {
		form.Volatility = vol
	}
	if set["premium"] {
		form.Premium = premium
	}
	if form.Premium != nil && *sweep != "" {
		return errors.New("-premium and -sweep cannot be combined")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Market.Timeout+5*time.Second)
	defer cancel()

	switch {
	case form.Premium != nil:
		res, err := svc.ImpliedVol(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, res.ImpliedVol.String())
		return nil

	case *sweep != "":
		sw, err := calculator.ParseSweep(*sweep)
		if err != nil {
			return err
		}
		results, err := svc.Sweep(ctx, form, sw)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintf(stdout, "%s=%g\t%s\n", sw.Axis, axisValue(r, sw.Axis), r.Price.String())
		}
		return writeReport(*reportDir, results)

	default:
		res, err := svc.Price(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, res.Price.String())
		return writeReport(*reportDir, []calculator.Result{*res})
	}
}

func writeReport(dir string, results []calculator.Result) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report dir %s: %w", dir, err)
	}
	err := errors.Join(report.WriteJSON(results, dir), report.WriteCSV(results, dir))
	if err == nil {
		logger.Infof("wrote %d quotes to %s", len(results), dir)
	}
	return err
}

func axisValue(r calculator.Result, axis calculator.Axis) float64 {
	q := r.Quote
	switch axis {
	case calculator.AxisSpot:
		return q.Spot
	case calculator.AxisStrike:
		return q.Strike
	case calculator.AxisRate:
		return q.Rate
	case calculator.AxisMaturity:
		return q.Maturity
	default:
		return q.Volatility
	}
}
