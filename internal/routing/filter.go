package routing

import (
	"sort"

	"xolium-sdk/internal/domain"
)

// IsEligible reports whether an edge passes every policy filter.
func IsEligible(e domain.LiquidityEdge, policy domain.RoutingPolicy) bool {
	return policy.AllowsVenue(e.Venue) &&
		e.LiquidityUSD >= policy.MinLiquidityUSD &&
		e.VolatilityBps <= policy.VolatilityFilter.MaxBps
}

// EligibleEdges returns the policy-eligible edges of graph in canonical order.
// The result is a new slice; graph.Edges is not modified.
func EligibleEdges(graph domain.LiquidityGraph, policy domain.RoutingPolicy) []domain.LiquidityEdge {
	return eligibleEdges(graph, policy, newKeyOrder())
}

func eligibleEdges(graph domain.LiquidityGraph, policy domain.RoutingPolicy, order *keyOrder) []domain.LiquidityEdge {
	type keyed struct {
		edge domain.LiquidityEdge
		key  string
	}

	candidates := make([]keyed, 0, len(graph.Edges))
	for _, e := range graph.Edges {
		if IsEligible(e, policy) {
			candidates = append(candidates, keyed{edge: e, key: EdgeKey(e)})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return order.compareEdges(candidates[i].edge, candidates[j].edge, candidates[i].key, candidates[j].key) < 0
	})

	edges := make([]domain.LiquidityEdge, len(candidates))
	for i, c := range candidates {
		edges[i] = c.edge
	}
	return edges
}
