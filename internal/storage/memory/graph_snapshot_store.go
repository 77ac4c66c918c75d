package memory

import (
	"context"
	"sort"
	"sync"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/storage"
)

// GraphSnapshotStore is an in-memory implementation of storage.GraphSnapshotStore.
type GraphSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GraphSnapshot // keyed by snapshot_id
}

// NewGraphSnapshotStore creates a new in-memory snapshot store.
func NewGraphSnapshotStore() *GraphSnapshotStore {
	return &GraphSnapshotStore{
		data: make(map[string]*domain.GraphSnapshot),
	}
}

// Compile-time interface check.
var _ storage.GraphSnapshotStore = (*GraphSnapshotStore)(nil)

// Insert adds a snapshot. Returns ErrDuplicateKey if snapshot_id exists.
func (s *GraphSnapshotStore) Insert(_ context.Context, snap *domain.GraphSnapshot) error {
	if snap == nil || snap.SnapshotID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.SnapshotID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[snap.SnapshotID] = copySnapshot(snap)
	return nil
}

// GetByID retrieves a snapshot by its ID. Returns ErrNotFound if not exists.
func (s *GraphSnapshotStore) GetByID(_ context.Context, snapshotID string) (*domain.GraphSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[snapshotID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(snap), nil
}

// GetLatest retrieves the snapshot with the greatest as_of_ms.
// Ties resolve to the greatest snapshot_id.
func (s *GraphSnapshotStore) GetLatest(_ context.Context) (*domain.GraphSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.GraphSnapshot
	for _, snap := range s.data {
		if latest == nil || lessSnapshot(latest, snap) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(latest), nil
}

// GetByTimeRange retrieves snapshots with as_of_ms within [start, end] (inclusive).
func (s *GraphSnapshotStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.GraphSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GraphSnapshot
	for _, snap := range s.data {
		if snap.Graph.AsOfMs >= start && snap.Graph.AsOfMs <= end {
			result = append(result, copySnapshot(snap))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return lessSnapshot(result[i], result[j])
	})
	return result, nil
}

func lessSnapshot(a, b *domain.GraphSnapshot) bool {
	if a.Graph.AsOfMs != b.Graph.AsOfMs {
		return a.Graph.AsOfMs < b.Graph.AsOfMs
	}
	return a.SnapshotID < b.SnapshotID
}

// copySnapshot returns a deep copy so callers cannot mutate stored edges.
func copySnapshot(snap *domain.GraphSnapshot) *domain.GraphSnapshot {
	edges := make([]domain.LiquidityEdge, len(snap.Graph.Edges))
	copy(edges, snap.Graph.Edges)
	return &domain.GraphSnapshot{
		SnapshotID: snap.SnapshotID,
		Graph:      domain.LiquidityGraph{AsOfMs: snap.Graph.AsOfMs, Edges: edges},
		RecordedAt: snap.RecordedAt,
	}
}
