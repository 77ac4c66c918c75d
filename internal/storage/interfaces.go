package storage

import (
	"context"

	"xolium-sdk/internal/domain"
)

// GraphSnapshotStore provides access to liquidity_graph_snapshots storage.
// Snapshots are append-only and keep their edges in received order.
type GraphSnapshotStore interface {
	// Insert adds a snapshot with all its edges. Returns ErrDuplicateKey if snapshot_id exists.
	Insert(ctx context.Context, s *domain.GraphSnapshot) error

	// GetByID retrieves a snapshot by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, snapshotID string) (*domain.GraphSnapshot, error)

	// GetLatest retrieves the snapshot with the greatest as_of_ms. Returns ErrNotFound if empty.
	GetLatest(ctx context.Context) (*domain.GraphSnapshot, error)

	// GetByTimeRange retrieves snapshots with as_of_ms within [start, end] (inclusive),
	// ordered by as_of_ms ASC, snapshot_id ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.GraphSnapshot, error)
}

// EdgeObservationStore provides access to edge_observations storage.
type EdgeObservationStore interface {
	// InsertBulk adds multiple observations. Fails entire batch on duplicate (snapshot_id, edge_index).
	InsertBulk(ctx context.Context, observations []*domain.EdgeObservation) error

	// GetByPair retrieves observations of one directed mint pair with as_of_ms within
	// [start, end] (inclusive), ordered by as_of_ms ASC, venue ASC.
	GetByPair(ctx context.Context, fromMint, toMint string, start, end int64) ([]*domain.EdgeObservation, error)
}
