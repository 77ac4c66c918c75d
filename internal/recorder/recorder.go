// Package recorder periodically stores liquidity graph snapshots so that
// routing decisions can be replayed later.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/idhash"
	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/storage"
)

// GraphSource provides the current liquidity graph.
// *client.NetworkClient implements it.
type GraphSource interface {
	LiquidityGraph(ctx context.Context) (domain.LiquidityGraph, error)
}

// Options contains configuration for creating a Runner.
type Options struct {
	Source       GraphSource
	Snapshots    storage.GraphSnapshotStore
	Observations storage.EdgeObservationStore // optional
	Interval     time.Duration                // Default: 30s
	Logger       zerolog.Logger
	Now          func() time.Time // Default: time.Now
}

// Result describes one recording.
type Result struct {
	SnapshotID string
	AsOfMs     int64
	Edges      int
	// Duplicate is set when the snapshot was already stored.
	Duplicate bool
}

// Runner records snapshots from a GraphSource.
type Runner struct {
	source       GraphSource
	snapshots    storage.GraphSnapshotStore
	observations storage.EdgeObservationStore
	interval     time.Duration
	logger       zerolog.Logger
	now          func() time.Time

	lastSuccess atomic.Int64 // unix ms, 0 before the first success
}

// NewRunner creates a new recorder.
func NewRunner(opts Options) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		source:       opts.Source,
		snapshots:    opts.Snapshots,
		observations: opts.Observations,
		interval:     interval,
		logger:       opts.Logger.With().Str("component", "recorder").Logger(),
		now:          now,
	}
}

// RecordOnce fetches the graph and stores it. A snapshot that is already
// stored is not an error; its observations are still inserted so that an
// earlier partial recording gets completed.
func (r *Runner) RecordOnce(ctx context.Context) (*Result, error) {
	graph, err := r.source.LiquidityGraph(ctx)
	if err != nil {
		observability.RecordSnapshot("error", 0, 0)
		return nil, fmt.Errorf("fetch liquidity graph: %w", err)
	}

	snap := &domain.GraphSnapshot{
		SnapshotID: idhash.ComputeSnapshotID(graph),
		Graph:      graph,
		RecordedAt: r.now().UnixMilli(),
	}
	result := &Result{
		SnapshotID: snap.SnapshotID,
		AsOfMs:     graph.AsOfMs,
		Edges:      len(graph.Edges),
	}

	if err := r.snapshots.Insert(ctx, snap); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			observability.RecordSnapshot("error", result.Edges, 0)
			return nil, fmt.Errorf("insert snapshot %s: %w", snap.SnapshotID, err)
		}
		result.Duplicate = true
	}

	if r.observations != nil {
		err := r.observations.InsertBulk(ctx, domain.ObservationsFromSnapshot(snap))
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			observability.RecordSnapshot("error", result.Edges, 0)
			return nil, fmt.Errorf("insert observations %s: %w", snap.SnapshotID, err)
		}
	}

	status := "stored"
	if result.Duplicate {
		status = "duplicate"
	}
	observability.RecordSnapshot(status, result.Edges, graph.AsOfMs)
	r.lastSuccess.Store(r.now().UnixMilli())

	return result, nil
}

// Run records immediately and then on every interval until ctx is done.
// Failed recordings are logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().Dur("interval", r.interval).Msg("recorder started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.tick(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info().Msg("recorder stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	res, err := r.RecordOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("record snapshot failed")
		}
		return
	}
	r.logger.Info().
		Str("snapshot_id", res.SnapshotID).
		Int64("as_of_ms", res.AsOfMs).
		Int("edges", res.Edges).
		Bool("duplicate", res.Duplicate).
		Msg("snapshot recorded")
}

// Healthy reports whether a recording succeeded within the last maxAge.
func (r *Runner) Healthy(maxAge time.Duration) bool {
	last := r.lastSuccess.Load()
	if last == 0 {
		return false
	}
	return r.now().Sub(time.UnixMilli(last)) <= maxAge
}

// Interval returns the recording interval.
func (r *Runner) Interval() time.Duration {
	return r.interval
}
