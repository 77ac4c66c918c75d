package verification

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/idhash"
	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/routing"
	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/storage"
)

// ErrSnapshotNotFound is returned when a snapshot ID doesn't exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// RouteVerifier implements Verifier using routing.ComputeRoute.
type RouteVerifier struct {
	snapshots    storage.GraphSnapshotStore
	policy       domain.RoutingPolicy
	pairs        []Pair
	permutations []Permutation
	logger       zerolog.Logger
}

// RouteVerifierOptions contains configuration for creating a RouteVerifier.
type RouteVerifierOptions struct {
	Snapshots storage.GraphSnapshotStore
	Policy    domain.RoutingPolicy

	// Pairs to route on every snapshot. When empty, every ordered pair of
	// distinct mints in the snapshot is used.
	Pairs []Pair

	// Permutations defaults to DefaultPermutations. The first is the baseline.
	Permutations []Permutation

	Logger zerolog.Logger
}

// NewRouteVerifier creates a new RouteVerifier. The policy is validated once here.
func NewRouteVerifier(opts RouteVerifierOptions) (*RouteVerifier, error) {
	if err := routing.ValidatePolicy(opts.Policy); err != nil {
		return nil, err
	}
	for _, p := range opts.Pairs {
		if err := routing.ValidateEndpoints(p.FromMint, p.ToMint); err != nil {
			return nil, err
		}
	}

	perms := opts.Permutations
	if len(perms) == 0 {
		perms = DefaultPermutations()
	}

	return &RouteVerifier{
		snapshots:    opts.Snapshots,
		policy:       opts.Policy,
		pairs:        opts.Pairs,
		permutations: perms,
		logger:       opts.Logger.With().Str("component", "verifier").Logger(),
	}, nil
}

// VerifySnapshot verifies one snapshot by ID.
func (v *RouteVerifier) VerifySnapshot(ctx context.Context, snapshotID string) ([]VerificationResult, error) {
	snap, err := v.snapshots.GetByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return v.verify(snap)
}

// VerifyRange verifies every snapshot with as_of_ms within [start, end].
func (v *RouteVerifier) VerifyRange(ctx context.Context, start, end int64) (*VerificationReport, error) {
	snaps, err := v.snapshots.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}

	report := &VerificationReport{Results: []VerificationResult{}}
	for _, snap := range snaps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := v.verify(snap)
		if err != nil {
			return nil, fmt.Errorf("verify snapshot %s: %w", snap.SnapshotID, err)
		}
		for _, res := range results {
			report.Add(res)
		}
	}

	v.logger.Info().
		Int("snapshots", len(snaps)).
		Int("total", report.Total).
		Int("divergent", report.Divergent).
		Msg("verification finished")
	return report, nil
}

func (v *RouteVerifier) verify(snap *domain.GraphSnapshot) ([]VerificationResult, error) {
	// A snapshot whose content no longer hashes to its ID was altered after recording.
	var integrity []FieldDivergence
	if id := idhash.ComputeSnapshotID(snap.Graph); id != snap.SnapshotID {
		integrity = append(integrity, FieldDivergence{Field: "SnapshotID", Expected: snap.SnapshotID, Actual: id})
	}

	pairs := v.pairs
	if len(pairs) == 0 {
		pairs = mintPairs(snap.Graph)
	}

	results := make([]VerificationResult, 0, len(pairs))
	for _, pair := range pairs {
		res, err := v.verifyPair(snap, pair)
		if err != nil {
			observability.RecordVerification("error")
			return nil, err
		}
		res.Divergences = append(append([]FieldDivergence(nil), integrity...), res.Divergences...)
		res.Match = len(res.Divergences) == 0

		if res.Match {
			observability.RecordVerification("match")
		} else {
			observability.RecordVerification("divergent")
			v.logger.Warn().
				Str("snapshot_id", snap.SnapshotID).
				Str("from", pair.FromMint).
				Str("to", pair.ToMint).
				Int("divergences", len(res.Divergences)).
				Msg("route diverged")
		}
		results = append(results, res)
	}
	return results, nil
}

func (v *RouteVerifier) verifyPair(snap *domain.GraphSnapshot, pair Pair) (VerificationResult, error) {
	res := VerificationResult{SnapshotID: snap.SnapshotID, Pair: pair}

	for i, perm := range v.permutations {
		graph := domain.LiquidityGraph{AsOfMs: snap.Graph.AsOfMs, Edges: perm.Apply(snap.Graph.Edges)}
		out, err := v.outcome(graph, pair)
		if err != nil {
			return res, fmt.Errorf("permutation %s: %w", perm.Name, err)
		}

		if i == 0 {
			res.Baseline = out
			continue
		}
		res.Divergences = append(res.Divergences, CompareOutcomes(perm.Name, res.Baseline, out)...)
	}
	return res, nil
}

// outcome runs the routing core. A denial is an outcome; any other error is not.
func (v *RouteVerifier) outcome(graph domain.LiquidityGraph, pair Pair) (Outcome, error) {
	route, err := routing.ComputeRoute(graph, v.policy, pair.FromMint, pair.ToMint)
	if err != nil {
		if errors.Is(err, sdkerr.ErrExecutionDenied) {
			return Outcome{ErrCode: sdkerr.CodeOf(err)}, nil
		}
		return Outcome{}, err
	}
	return Outcome{
		Found:       true,
		Fingerprint: idhash.RouteFingerprint(route),
		Hops:        route.Hops(),
		Score:       route.Score,
	}, nil
}

// mintPairs returns every ordered pair of distinct mints in graph, sorted.
func mintPairs(graph domain.LiquidityGraph) []Pair {
	set := make(map[string]struct{})
	for _, e := range graph.Edges {
		set[e.FromMint] = struct{}{}
		set[e.ToMint] = struct{}{}
	}

	mints := make([]string, 0, len(set))
	for m := range set {
		mints = append(mints, m)
	}
	sort.Strings(mints)

	var pairs []Pair
	for _, from := range mints {
		for _, to := range mints {
			if from != to {
				pairs = append(pairs, Pair{FromMint: from, ToMint: to})
			}
		}
	}
	return pairs
}
