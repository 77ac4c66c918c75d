package clickhouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/storage"
	"xolium-sdk/internal/storage/clickhouse"
)

func observations(snapshotID string, asOfMs int64, venues ...string) []*domain.EdgeObservation {
	snap := &domain.GraphSnapshot{SnapshotID: snapshotID, Graph: domain.LiquidityGraph{AsOfMs: asOfMs}}
	for i, v := range venues {
		snap.Graph.Edges = append(snap.Graph.Edges, domain.LiquidityEdge{
			FromMint: "A", ToMint: "B", Venue: v,
			LiquidityUSD: 250.25 * float64(i+1), VolatilityBps: int64(5 * i),
		})
	}
	return domain.ObservationsFromSnapshot(snap)
}

func TestEdgeObservationStore_ClickHouse(t *testing.T) {
	conn := setupTestDB(t)
	store := clickhouse.NewEdgeObservationStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, observations("s1", 2000, "raydium", "orca")))
	require.NoError(t, store.InsertBulk(ctx, observations("s2", 1000, "orca")))

	t.Run("ordered by as_of then venue", func(t *testing.T) {
		got, err := store.GetByPair(ctx, "A", "B", 0, 5000)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "s2", got[0].SnapshotID)
		assert.Equal(t, "orca", got[1].Venue)
		assert.Equal(t, 1, got[1].EdgeIndex)
		assert.Equal(t, "raydium", got[2].Venue)
		assert.Equal(t, 250.25, got[2].LiquidityUSD)
		assert.Equal(t, int64(2000), got[2].AsOfMs)
	})

	t.Run("range is inclusive", func(t *testing.T) {
		got, err := store.GetByPair(ctx, "A", "B", 1000, 1000)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("duplicates", func(t *testing.T) {
		assert.ErrorIs(t, store.InsertBulk(ctx, observations("s1", 2000, "raydium")), storage.ErrDuplicateKey)

		batch := observations("s3", 3000, "orca")
		batch = append(batch, batch[0])
		assert.ErrorIs(t, store.InsertBulk(ctx, batch), storage.ErrDuplicateKey)

		got, err := store.GetByPair(ctx, "A", "B", 3000, 3000)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
