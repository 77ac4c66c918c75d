// Package config loads binary configuration from a YAML file, a .env file
// and XOLIUM_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"xolium-sdk/internal/domain"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "XOLIUM_"

// Config is the configuration shared by the binaries.
type Config struct {
	Client   domain.ClientConfig  `yaml:"client"`
	Logging  Logging              `yaml:"logging"`
	Storage  Storage              `yaml:"storage"`
	Recorder Recorder             `yaml:"recorder"`
	Routing  domain.RoutingPolicy `yaml:"routing"`

	// SignerSecretKey is a base58 64-byte secret key. Only read from env.
	SignerSecretKey string `yaml:"-"`
}

// Logging configures NewLogger.
type Logging struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Storage holds database DSNs. Empty DSNs select in-memory stores.
type Storage struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// Recorder configures the snapshot recorder.
type Recorder struct {
	Interval   time.Duration `yaml:"interval"`
	ListenAddr string        `yaml:"listen_addr"`
}

// Default returns the configuration used when nothing overrides it.
// API base URLs have no default.
func Default() Config {
	return Config{
		Client: domain.ClientConfig{
			RPCEndpoint: "https://api.devnet.solana.com",
			Commitment:  domain.CommitmentConfirmed,
			Retry: domain.RetryPolicy{
				MaxAttempts:              3,
				BaseDelayMs:              200,
				MaxDelayMs:               2000,
				RetryableHTTPStatusCodes: []int{429, 500, 502, 503, 504},
			},
			APIs: domain.APIs{
				Network: domain.APIConfig{
					TimeoutMs: 10_000,
					Routes: map[string]string{
						domain.RouteHealth:         "/v1/network/health",
						domain.RouteMetrics:        "/v1/network/metrics",
						domain.RouteLiquidityGraph: "/v1/network/liquidity-graph",
					},
				},
				Execution: domain.APIConfig{
					TimeoutMs: 10_000,
					Routes: map[string]string{
						domain.RouteCredits: "/v1/execution/credits",
						domain.RouteQuote:   "/v1/execution/quote",
						domain.RouteExecute: "/v1/execution/execute",
						domain.RouteYield:   "/v1/yield/operations",
					},
				},
			},
		},
		Logging: Logging{Level: "info"},
		Recorder: Recorder{
			Interval:   30 * time.Second,
			ListenAddr: ":9102",
		},
		Routing: domain.RoutingPolicy{
			MinLiquidityUSD:  1000,
			VolatilityFilter: domain.VolatilityFilter{MaxBps: 500},
			MaxHops:          3,
			AllowVenues:      []string{"orca", "raydium", "meteora", "phoenix"},
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty), the .env file at envFile (skipped when missing) and the
// environment. Variables already set in the environment win over .env.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays XOLIUM_* variables onto cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("RPC_ENDPOINT", &cfg.Client.RPCEndpoint)
	str("WS_ENDPOINT", &cfg.Client.WSEndpoint)
	str("NETWORK_API_URL", &cfg.Client.APIs.Network.BaseURL)
	str("EXECUTION_API_URL", &cfg.Client.APIs.Execution.BaseURL)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	str("CLICKHOUSE_DSN", &cfg.Storage.ClickhouseDSN)
	str("RECORDER_ADDR", &cfg.Recorder.ListenAddr)
	str("SIGNER_SECRET_KEY", &cfg.SignerSecretKey)

	if v, ok := lookup(EnvPrefix + "COMMITMENT"); ok && v != "" {
		cfg.Client.Commitment = domain.Commitment(v)
	}

	if v, ok := lookup(EnvPrefix + "API_KEY"); ok && v != "" {
		for _, api := range []*domain.APIConfig{&cfg.Client.APIs.Network, &cfg.Client.APIs.Execution} {
			headers := make(map[string]string, len(api.Headers)+1)
			for k, hv := range api.Headers {
				headers[k] = hv
			}
			headers["X-Api-Key"] = v
			api.Headers = headers
		}
	}

	if v, ok := lookup(EnvPrefix + "LOG_PRETTY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_PRETTY: %w", EnvPrefix, err)
		}
		cfg.Logging.Pretty = b
	}

	if v, ok := lookup(EnvPrefix + "RECORDER_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sRECORDER_INTERVAL: %w", EnvPrefix, err)
		}
		cfg.Recorder.Interval = d
	}

	if v, ok := lookup(EnvPrefix + "ALLOW_VENUES"); ok && v != "" {
		cfg.Routing.AllowVenues = splitCSV(v)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
