package verification

import "xolium-sdk/internal/domain"

// Permutation reorders a snapshot's edges. Apply must return a new slice.
type Permutation struct {
	Name  string
	Apply func(edges []domain.LiquidityEdge) []domain.LiquidityEdge
}

// DefaultPermutations returns the deterministic reorderings every snapshot
// is replayed under. The first entry is the identity and serves as baseline.
func DefaultPermutations() []Permutation {
	return []Permutation{
		{Name: "identity", Apply: identity},
		{Name: "reversed", Apply: reversed},
		{Name: "rotate-1", Apply: func(e []domain.LiquidityEdge) []domain.LiquidityEdge { return rotate(e, 1) }},
		{Name: "rotate-half", Apply: func(e []domain.LiquidityEdge) []domain.LiquidityEdge { return rotate(e, len(e)/2) }},
		{Name: "interleaved", Apply: interleaved},
	}
}

func identity(edges []domain.LiquidityEdge) []domain.LiquidityEdge {
	out := make([]domain.LiquidityEdge, len(edges))
	copy(out, edges)
	return out
}

func reversed(edges []domain.LiquidityEdge) []domain.LiquidityEdge {
	out := make([]domain.LiquidityEdge, len(edges))
	for i, e := range edges {
		out[len(edges)-1-i] = e
	}
	return out
}

// rotate moves the first k edges to the end.
func rotate(edges []domain.LiquidityEdge, k int) []domain.LiquidityEdge {
	n := len(edges)
	out := make([]domain.LiquidityEdge, 0, n)
	if n == 0 {
		return out
	}
	k %= n
	out = append(out, edges[k:]...)
	return append(out, edges[:k]...)
}

// interleaved places even positions before odd ones.
func interleaved(edges []domain.LiquidityEdge) []domain.LiquidityEdge {
	out := make([]domain.LiquidityEdge, 0, len(edges))
	for i := 0; i < len(edges); i += 2 {
		out = append(out, edges[i])
	}
	for i := 1; i < len(edges); i += 2 {
		out = append(out, edges[i])
	}
	return out
}
