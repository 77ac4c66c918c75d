package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/storage"
)

// EdgeObservationStore is an in-memory implementation of storage.EdgeObservationStore.
type EdgeObservationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.EdgeObservation // keyed by (snapshot_id, edge_index)
}

// NewEdgeObservationStore creates a new in-memory edge observation store.
func NewEdgeObservationStore() *EdgeObservationStore {
	return &EdgeObservationStore{
		data: make(map[string]*domain.EdgeObservation),
	}
}

// Compile-time interface check.
var _ storage.EdgeObservationStore = (*EdgeObservationStore)(nil)

func observationKey(snapshotID string, edgeIndex int) string {
	return fmt.Sprintf("%s|%d", snapshotID, edgeIndex)
}

// InsertBulk adds multiple observations. Fails entire batch on duplicate.
func (s *EdgeObservationStore) InsertBulk(_ context.Context, observations []*domain.EdgeObservation) error {
	if len(observations) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(observations))
	for _, o := range observations {
		if o == nil || o.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
		key := observationKey(o.SnapshotID, o.EdgeIndex)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range observations {
		obsCopy := *o
		s.data[observationKey(o.SnapshotID, o.EdgeIndex)] = &obsCopy
	}
	return nil
}

// GetByPair retrieves observations of one directed pair within [start, end] (inclusive).
func (s *EdgeObservationStore) GetByPair(_ context.Context, fromMint, toMint string, start, end int64) ([]*domain.EdgeObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EdgeObservation
	for _, o := range s.data {
		if o.FromMint == fromMint && o.ToMint == toMint && o.AsOfMs >= start && o.AsOfMs <= end {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.AsOfMs != b.AsOfMs {
			return a.AsOfMs < b.AsOfMs
		}
		if a.Venue != b.Venue {
			return a.Venue < b.Venue
		}
		if a.SnapshotID != b.SnapshotID {
			return a.SnapshotID < b.SnapshotID
		}
		return a.EdgeIndex < b.EdgeIndex
	})
	return result, nil
}
