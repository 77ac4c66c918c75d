package domain

// GraphSnapshot is a recorded liquidity graph.
// Corresponds to liquidity_graph_snapshots + liquidity_graph_edges in PostgreSQL.
type GraphSnapshot struct {
	SnapshotID string         // SHA256 content hash, see idhash.ComputeSnapshotID
	Graph      LiquidityGraph // edges kept in the order they were received
	RecordedAt int64          // Unix timestamp in milliseconds
}

// EdgeObservation is one edge of one snapshot, flattened for time-series queries.
// Corresponds to edge_observations table in ClickHouse.
type EdgeObservation struct {
	SnapshotID    string
	EdgeIndex     int // position of the edge within the snapshot
	AsOfMs        int64
	FromMint      string
	ToMint        string
	Venue         string
	LiquidityUSD  float64
	VolatilityBps int64
}

// ObservationsFromSnapshot flattens a snapshot into edge observations.
func ObservationsFromSnapshot(s *GraphSnapshot) []*EdgeObservation {
	out := make([]*EdgeObservation, 0, len(s.Graph.Edges))
	for i, e := range s.Graph.Edges {
		out = append(out, &EdgeObservation{
			SnapshotID:    s.SnapshotID,
			EdgeIndex:     i,
			AsOfMs:        s.Graph.AsOfMs,
			FromMint:      e.FromMint,
			ToMint:        e.ToMint,
			Venue:         e.Venue,
			LiquidityUSD:  e.LiquidityUSD,
			VolatilityBps: e.VolatilityBps,
		})
	}
	return out
}
