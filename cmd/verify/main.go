// Package main replays stored liquidity graph snapshots under edge
// reorderings and reports any route that changed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"xolium-sdk/internal/config"
	"xolium-sdk/internal/storage/backend"
	"xolium-sdk/internal/verification"
)

func main() {
	configPath := flag.String("config", os.Getenv("XOLIUM_CONFIG"), "YAML config file")
	envFile := flag.String("env-file", ".env", "Env file loaded before XOLIUM_* overrides")
	snapshotID := flag.String("snapshot-id", "", "Verify a single snapshot")
	fromTime := flag.String("from-time", "", "Start time (RFC3339)")
	toTime := flag.String("to-time", "", "End time (RFC3339)")
	pairs := flag.String("pairs", "", "Comma-separated FROM:TO mint pairs; all pairs when empty")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logging).With().Str("service", "verify").Logger()

	if cfg.Storage.PostgresDSN == "" {
		logger.Fatal().Msg("XOLIUM_POSTGRES_DSN or storage.postgres_dsn is required")
	}

	pairList, err := parsePairs(*pairs)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse --pairs")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()

	verifier, err := verification.NewRouteVerifier(verification.RouteVerifierOptions{
		Snapshots: stores.Snapshots,
		Policy:    cfg.Routing,
		Pairs:     pairList,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create verifier")
	}

	var report *verification.VerificationReport
	if *snapshotID != "" {
		results, err := verifier.VerifySnapshot(ctx, *snapshotID)
		if err != nil {
			logger.Fatal().Err(err).Str("snapshot_id", *snapshotID).Msg("verify snapshot")
		}
		report = &verification.VerificationReport{Results: []verification.VerificationResult{}}
		for _, r := range results {
			report.Add(r)
		}
	} else {
		start, end, err := timeRange(*fromTime, *toTime)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse time range")
		}
		if report, err = verifier.VerifyRange(ctx, start, end); err != nil {
			logger.Fatal().Err(err).Msg("verify range")
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Fatal().Err(err).Msg("write report")
	}

	if report.Divergent > 0 {
		os.Exit(1)
	}
}

// parsePairs parses "A:B,C:D".
func parsePairs(s string) ([]verification.Pair, error) {
	var out []verification.Pair
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		from, to, ok := strings.Cut(item, ":")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid pair %q, want FROM:TO", item)
		}
		out = append(out, verification.Pair{FromMint: from, ToMint: to})
	}
	return out, nil
}

// timeRange parses RFC3339 bounds. Missing bounds cover all stored history.
func timeRange(from, to string) (int64, int64, error) {
	start, end := int64(0), int64(1<<63-1)
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return 0, 0, fmt.Errorf("from-time: %w", err)
		}
		start = t.UnixMilli()
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return 0, 0, fmt.Errorf("to-time: %w", err)
		}
		end = t.UnixMilli()
	}
	if start > end {
		return 0, 0, fmt.Errorf("from-time is after to-time")
	}
	return start, end, nil
}
