package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"xolium-sdk/internal/domain"
)

// ComputeSnapshotID computes a deterministic snapshot_id using SHA256.
// Formula: SHA256(as_of_ms \n edge_1 \n ... \n edge_n) where each edge is
// from_mint|to_mint|venue|liquidity_usd|volatility_bps and edges are sorted
// byte-wise, so the ID does not depend on the order the service sent them in.
// Returns hex-encoded hash (64 characters).
func ComputeSnapshotID(graph domain.LiquidityGraph) string {
	lines := make([]string, len(graph.Edges))
	for i, e := range graph.Edges {
		lines[i] = edgeLine(e)
	}
	sort.Strings(lines)

	data := fmt.Sprintf("%d\n%s", graph.AsOfMs, strings.Join(lines, "\n"))

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// RouteFingerprint computes a deterministic fingerprint of a route.
// Formula: SHA256(edge_1~...~edge_n#score), edges in path order.
// Returns hex-encoded hash (64 characters).
func RouteFingerprint(route domain.LiquidityRoute) string {
	parts := make([]string, len(route.Path))
	for i, e := range route.Path {
		parts[i] = edgeLine(e)
	}

	data := strings.Join(parts, "~") + "#" + formatFloat(route.Score)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

func edgeLine(e domain.LiquidityEdge) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d",
		e.FromMint,
		e.ToMint,
		e.Venue,
		formatFloat(e.LiquidityUSD),
		e.VolatilityBps,
	)
}

// formatFloat renders the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
