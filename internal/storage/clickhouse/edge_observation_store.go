package clickhouse

import (
	"context"
	"fmt"
	"time"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/storage"
)

// EdgeObservationStore implements storage.EdgeObservationStore using ClickHouse.
type EdgeObservationStore struct {
	conn *Conn
}

// NewEdgeObservationStore creates a new EdgeObservationStore.
func NewEdgeObservationStore(conn *Conn) *EdgeObservationStore {
	return &EdgeObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EdgeObservationStore = (*EdgeObservationStore)(nil)

// InsertBulk adds multiple observations. Fails entire batch on duplicate (snapshot_id, edge_index).
// MergeTree does not enforce uniqueness, so duplicates are checked before the batch is sent.
func (s *EdgeObservationStore) InsertBulk(ctx context.Context, observations []*domain.EdgeObservation) (err error) {
	if len(observations) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { observe("insert_edge_observations", start, err) }()

	// Check for intra-batch duplicates
	type key struct {
		snapshotID string
		edgeIndex  int
	}
	seen := make(map[key]struct{}, len(observations))
	bySnapshot := make(map[string][]int)
	for _, o := range observations {
		if o == nil || o.SnapshotID == "" || o.EdgeIndex < 0 {
			return storage.ErrInvalidInput
		}
		k := key{o.SnapshotID, o.EdgeIndex}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		bySnapshot[o.SnapshotID] = append(bySnapshot[o.SnapshotID], o.EdgeIndex)
	}

	// Check for duplicates against existing DB rows
	for snapshotID, indexes := range bySnapshot {
		existing, err := s.edgeIndexes(ctx, snapshotID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, idx := range indexes {
			if _, ok := existing[idx]; ok {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO edge_observations (
			snapshot_id, edge_index, as_of_ms, from_mint, to_mint, venue, liquidity_usd, volatility_bps
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range observations {
		err = batch.Append(
			o.SnapshotID, uint32(o.EdgeIndex), uint64(o.AsOfMs),
			o.FromMint, o.ToMint, o.Venue, o.LiquidityUSD, o.VolatilityBps,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByPair retrieves observations of one directed pair within [start, end] (inclusive).
func (s *EdgeObservationStore) GetByPair(ctx context.Context, fromMint, toMint string, startMs, endMs int64) (obs []*domain.EdgeObservation, err error) {
	start := time.Now()
	defer func() { observe("get_edge_observations_by_pair", start, err) }()

	query := `
		SELECT snapshot_id, edge_index, as_of_ms, from_mint, to_mint, venue, liquidity_usd, volatility_bps
		FROM edge_observations
		WHERE from_mint = ? AND to_mint = ? AND as_of_ms >= ? AND as_of_ms <= ?
		ORDER BY as_of_ms ASC, venue ASC, snapshot_id ASC, edge_index ASC
	`

	rows, err := s.conn.Query(ctx, query, fromMint, toMint, uint64(startMs), uint64(endMs))
	if err != nil {
		return nil, fmt.Errorf("query by pair: %w", err)
	}
	defer rows.Close()

	return scanEdgeObservations(rows)
}

// edgeIndexes returns the stored edge indexes of one snapshot.
func (s *EdgeObservationStore) edgeIndexes(ctx context.Context, snapshotID string) (map[int]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT edge_index FROM edge_observations WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]struct{})
	for rows.Next() {
		var idx uint32
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		out[int(idx)] = struct{}{}
	}
	return out, rows.Err()
}

// scanEdgeObservations scans multiple rows.
func scanEdgeObservations(rows chRows) ([]*domain.EdgeObservation, error) {
	var observations []*domain.EdgeObservation

	for rows.Next() {
		var o domain.EdgeObservation
		var edgeIndex uint32
		var asOfMs uint64

		err := rows.Scan(
			&o.SnapshotID, &edgeIndex, &asOfMs,
			&o.FromMint, &o.ToMint, &o.Venue, &o.LiquidityUSD, &o.VolatilityBps,
		)
		if err != nil {
			return nil, fmt.Errorf("scan edge observation row: %w", err)
		}

		o.EdgeIndex = int(edgeIndex)
		o.AsOfMs = int64(asOfMs)
		observations = append(observations, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edge observation rows: %w", err)
	}

	return observations, nil
}
