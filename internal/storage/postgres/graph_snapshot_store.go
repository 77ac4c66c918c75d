package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/storage"
)

// GraphSnapshotStore implements storage.GraphSnapshotStore using PostgreSQL.
// A snapshot is one row in liquidity_graph_snapshots plus one row per edge
// in liquidity_graph_edges.
type GraphSnapshotStore struct {
	pool *Pool
}

// NewGraphSnapshotStore creates a new GraphSnapshotStore.
func NewGraphSnapshotStore(pool *Pool) *GraphSnapshotStore {
	return &GraphSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GraphSnapshotStore = (*GraphSnapshotStore)(nil)

var edgeColumns = []string{
	"snapshot_id", "edge_index", "from_mint", "to_mint", "venue", "liquidity_usd", "volatility_bps",
}

// Insert adds a snapshot and its edges in one transaction.
// Returns ErrDuplicateKey if snapshot_id exists.
func (s *GraphSnapshotStore) Insert(ctx context.Context, snap *domain.GraphSnapshot) (err error) {
	if snap == nil || snap.SnapshotID == "" {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	defer func() { observe("insert_snapshot", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO liquidity_graph_snapshots (snapshot_id, as_of_ms, edge_count, recorded_at)
		VALUES ($1, $2, $3, $4)
	`, snap.SnapshotID, snap.Graph.AsOfMs, len(snap.Graph.Edges), snap.RecordedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}

	rows := make([][]any, len(snap.Graph.Edges))
	for i, e := range snap.Graph.Edges {
		rows[i] = []any{snap.SnapshotID, i, e.FromMint, e.ToMint, e.Venue, e.LiquidityUSD, e.VolatilityBps}
	}
	if _, err = tx.CopyFrom(ctx, pgx.Identifier{"liquidity_graph_edges"}, edgeColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy snapshot edges: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a snapshot by its ID. Returns ErrNotFound if not exists.
func (s *GraphSnapshotStore) GetByID(ctx context.Context, snapshotID string) (snap *domain.GraphSnapshot, err error) {
	start := time.Now()
	defer func() { observe("get_snapshot", start, err) }()

	query := `
		SELECT snapshot_id, as_of_ms, recorded_at
		FROM liquidity_graph_snapshots
		WHERE snapshot_id = $1
	`
	snap, err = scanSnapshot(s.pool.QueryRow(ctx, query, snapshotID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot by id: %w", err)
	}

	if err = s.loadEdges(ctx, []*domain.GraphSnapshot{snap}); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetLatest retrieves the snapshot with the greatest as_of_ms.
// Ties resolve to the greatest snapshot_id.
func (s *GraphSnapshotStore) GetLatest(ctx context.Context) (snap *domain.GraphSnapshot, err error) {
	start := time.Now()
	defer func() { observe("get_latest_snapshot", start, err) }()

	query := `
		SELECT snapshot_id, as_of_ms, recorded_at
		FROM liquidity_graph_snapshots
		ORDER BY as_of_ms DESC, snapshot_id DESC
		LIMIT 1
	`
	snap, err = scanSnapshot(s.pool.QueryRow(ctx, query))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}

	if err = s.loadEdges(ctx, []*domain.GraphSnapshot{snap}); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetByTimeRange retrieves snapshots with as_of_ms within [start, end] (inclusive).
func (s *GraphSnapshotStore) GetByTimeRange(ctx context.Context, startMs, endMs int64) (snaps []*domain.GraphSnapshot, err error) {
	start := time.Now()
	defer func() { observe("get_snapshots_by_time_range", start, err) }()

	query := `
		SELECT snapshot_id, as_of_ms, recorded_at
		FROM liquidity_graph_snapshots
		WHERE as_of_ms >= $1 AND as_of_ms <= $2
		ORDER BY as_of_ms ASC, snapshot_id ASC
	`
	rows, err := s.pool.Query(ctx, query, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by time range: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	if err = s.loadEdges(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// loadEdges fills the edges of snaps with a single query.
func (s *GraphSnapshotStore) loadEdges(ctx context.Context, snaps []*domain.GraphSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	ids := make([]string, len(snaps))
	byID := make(map[string]*domain.GraphSnapshot, len(snaps))
	for i, snap := range snaps {
		ids[i] = snap.SnapshotID
		byID[snap.SnapshotID] = snap
	}

	query := `
		SELECT snapshot_id, from_mint, to_mint, venue, liquidity_usd, volatility_bps
		FROM liquidity_graph_edges
		WHERE snapshot_id = ANY($1)
		ORDER BY snapshot_id ASC, edge_index ASC
	`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("get snapshot edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var snapshotID string
		var e domain.LiquidityEdge
		if err := rows.Scan(&snapshotID, &e.FromMint, &e.ToMint, &e.Venue, &e.LiquidityUSD, &e.VolatilityBps); err != nil {
			return fmt.Errorf("scan edge row: %w", err)
		}
		snap := byID[snapshotID]
		snap.Graph.Edges = append(snap.Graph.Edges, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate edge rows: %w", err)
	}
	return nil
}

// scanSnapshot scans a snapshot header. Edges start empty.
func scanSnapshot(row pgx.Row) (*domain.GraphSnapshot, error) {
	var snap domain.GraphSnapshot
	if err := row.Scan(&snap.SnapshotID, &snap.Graph.AsOfMs, &snap.RecordedAt); err != nil {
		return nil, err
	}
	snap.Graph.Edges = []domain.LiquidityEdge{}
	return &snap, nil
}
