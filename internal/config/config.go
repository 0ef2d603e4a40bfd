// Package config loads the pricer configuration from an optional YAML file,
// OPTION_PRICER_* environment variables and built-in defaults, in that order
// of precedence reversed (env wins over file, file over defaults).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// OPTION_PRICER_SERVER_ADDR or OPTION_PRICER_DEFAULTS_VOLATILITY.
const EnvPrefix = "OPTION_PRICER"

// Config is the top-level configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Market   MarketConfig   `mapstructure:"market"`

	// Precision is the number of decimal places a displayed price is rounded to.
	Precision int32 `mapstructure:"precision" validate:"gte=0,lte=12"`
}

// ServerConfig controls the HTTP front end.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

type LogConfig struct {
	Verbosity int    `mapstructure:"verbosity" validate:"gte=0,lte=3"`
	Format    string `mapstructure:"format"    validate:"oneof=text json"`
}

// DefaultsConfig holds the form values used when a request omits a field.
type DefaultsConfig struct {
	Spot       float64 `mapstructure:"spot"       json:"spot"       validate:"gte=0"`
	Strike     float64 `mapstructure:"strike"     json:"strike"     validate:"gte=0"`
	Rate       float64 `mapstructure:"rate"       json:"rate"`
	Maturity   float64 `mapstructure:"maturity"   json:"maturity"   validate:"gte=0"`
	Volatility float64 `mapstructure:"volatility" json:"volatility" validate:"gte=0"`
	Kind       string  `mapstructure:"kind"       json:"kind"       validate:"oneof=call put"`
}

// MarketConfig selects where spot prices come from when a ticker is given.
type MarketConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=static massive"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"gt=0"`
	Retries  int           `mapstructure:"retries"  validate:"gte=0,lte=10"`

	// Spots is a static ticker -> price table. Keys are case-insensitive.
	Spots map[string]float64 `mapstructure:"spots"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("precision", 4)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("log.verbosity", 1)
	v.SetDefault("log.format", "text")

	v.SetDefault("defaults.spot", 100.0)
	v.SetDefault("defaults.strike", 100.0)
	v.SetDefault("defaults.rate", 0.05)
	v.SetDefault("defaults.maturity", 1.0)
	v.SetDefault("defaults.volatility", 0.2)
	v.SetDefault("defaults.kind", "call")

	v.SetDefault("market.provider", "static")
	v.SetDefault("market.api_key", "")
	v.SetDefault("market.base_url", "https://api.massive.com")
	v.SetDefault("market.timeout", 30*time.Second)
	v.SetDefault("market.retries", 2)
}

// Load reads configuration from path (may be empty) and the environment,
// then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Fall back to the variable names the market data vendors document.
	if cfg.Market.APIKey == "" {
		cfg.Market.APIKey = firstEnv("MASSIVE_API_KEY", "POLYGON_API_KEY")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the cross-field rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Market.Provider == "massive" && cfg.Market.APIKey == "" {
		return errors.New("invalid config: market.provider massive requires market.api_key")
	}
	for ticker, spot := range cfg.Market.Spots {
		if spot < 0 {
			return fmt.Errorf("invalid config: market.spots.%s must not be negative", ticker)
		}
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
