// Package main provides the xolium command line client.
//
// Usage:
//
//	xolium [global flags] <command> [command flags]
//
// Commands: route, health, metrics, graph, credits, slot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"xolium-sdk/internal/client"
	"xolium-sdk/internal/config"
	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/routing"
	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/solana"
	"xolium-sdk/internal/validation"
)

// app carries the state shared by every command.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) (any, error)
}

var commands = []command{
	{"route", "compute the best route through a liquidity graph", runRoute},
	{"health", "query the network health endpoint", runHealth},
	{"metrics", "query the network metrics endpoint", runMetrics},
	{"graph", "fetch the current liquidity graph", runGraph},
	{"credits", "query the execution credit balance", runCredits},
	{"slot", "print the current Solana slot", runSlot},
}

func main() {
	configPath := flag.String("config", os.Getenv("XOLIUM_CONFIG"), "YAML config file")
	envFile := flag.String("env-file", ".env", "Env file loaded before XOLIUM_* overrides")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	a := &app{cfg: cfg, logger: config.NewLogger(cfg.Logging)}

	name := flag.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out, err := cmd.run(ctx, a, flag.Args()[1:])
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := printJSON(out); err != nil {
		a.logger.Fatal().Err(err).Msg("write output")
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: xolium [flags] <command> [command flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	flag.PrintDefaults()
}

// newClient builds an SDK client, binding the signer from
// XOLIUM_SIGNER_SECRET_KEY when it is set.
func (a *app) newClient() (*client.Client, error) {
	var signer client.Signer
	if a.cfg.SignerSecretKey != "" {
		kp, err := solana.KeypairFromSecretKey(a.cfg.SignerSecretKey)
		if err != nil {
			return nil, fmt.Errorf("signer: %w", err)
		}
		signer = kp
	}
	return client.New(a.cfg.Client, signer, client.WithLogger(a.logger))
}

// withClient runs fn with a client that is closed afterwards.
func withClient[T any](a *app, fn func(c *client.Client) (T, error)) (any, error) {
	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return fn(c)
}

func runRoute(ctx context.Context, a *app, args []string) (any, error) {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	from := fs.String("from", "", "Source mint (required)")
	to := fs.String("to", "", "Destination mint (required)")
	graphFile := fs.String("graph", "", "Liquidity graph JSON file; fetched from the network API when empty")
	maxHops := fs.Int("max-hops", a.cfg.Routing.MaxHops, "Maximum route length")
	minLiquidity := fs.Float64("min-liquidity", a.cfg.Routing.MinLiquidityUSD, "Minimum edge liquidity in USD")
	maxBps := fs.Int64("max-volatility-bps", a.cfg.Routing.VolatilityFilter.MaxBps, "Maximum edge volatility in bps")
	venues := fs.String("venues", strings.Join(a.cfg.Routing.AllowVenues, ","), "Comma-separated allowed venues")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *from == "" || *to == "" {
		return nil, errors.New("--from and --to are required")
	}

	policy := domain.RoutingPolicy{
		MinLiquidityUSD:  *minLiquidity,
		VolatilityFilter: domain.VolatilityFilter{MaxBps: *maxBps},
		MaxHops:          *maxHops,
		AllowVenues:      splitVenues(*venues),
	}

	if *graphFile != "" {
		graph, err := readGraph(*graphFile)
		if err != nil {
			return nil, err
		}
		return computeOffline(graph, policy, *from, *to)
	}

	return withClient(a, func(c *client.Client) (domain.LiquidityRoute, error) {
		graph, err := c.Network.LiquidityGraph(ctx)
		if err != nil {
			return domain.LiquidityRoute{}, err
		}
		return c.Execution.ComputeLiquidityRoute(graph, policy, *from, *to)
	})
}

// computeOffline routes over a local graph without building a client, so
// no API configuration is needed.
func computeOffline(graph domain.LiquidityGraph, policy domain.RoutingPolicy, from, to string) (domain.LiquidityRoute, error) {
	if err := routing.ValidatePolicy(policy); err != nil {
		return domain.LiquidityRoute{}, err
	}
	if err := routing.ValidateEndpoints(from, to); err != nil {
		return domain.LiquidityRoute{}, err
	}
	if err := validation.LiquidityGraph(graph).InvalidInput("Invalid liquidity graph"); err != nil {
		return domain.LiquidityRoute{}, err
	}
	return routing.ComputeRoute(graph, policy, from, to)
}

func readGraph(path string) (domain.LiquidityGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.LiquidityGraph{}, fmt.Errorf("read graph: %w", err)
	}
	var graph domain.LiquidityGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return domain.LiquidityGraph{}, fmt.Errorf("parse graph %s: %w", path, err)
	}
	return graph, nil
}

func splitVenues(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func runHealth(ctx context.Context, a *app, _ []string) (any, error) {
	return withClient(a, func(c *client.Client) (domain.NetworkHealth, error) {
		return c.Network.HealthCheck(ctx)
	})
}

func runMetrics(ctx context.Context, a *app, _ []string) (any, error) {
	return withClient(a, func(c *client.Client) (domain.NetworkMetrics, error) {
		return c.Network.Metrics(ctx)
	})
}

func runGraph(ctx context.Context, a *app, _ []string) (any, error) {
	return withClient(a, func(c *client.Client) (domain.LiquidityGraph, error) {
		return c.Network.LiquidityGraph(ctx)
	})
}

func runCredits(ctx context.Context, a *app, _ []string) (any, error) {
	return withClient(a, func(c *client.Client) (domain.ExecutionCreditBalance, error) {
		return c.Execution.Credits(ctx)
	})
}

func runSlot(ctx context.Context, a *app, _ []string) (any, error) {
	return withClient(a, func(c *client.Client) (map[string]int64, error) {
		slot, err := c.Slot(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"slot": slot}, nil
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError writes SDK errors as JSON on stderr and anything else as text.
func printError(err error) {
	var sdkErr *sdkerr.Error
	if errors.As(err, &sdkErr) {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"error": sdkErr})
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
