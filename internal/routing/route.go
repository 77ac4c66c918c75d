package routing

import (
	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/sdkerr"
)

// ComputeRoute returns the best route from fromMint to toMint under policy.
//
// Errors:
//   - INVALID_INPUT for a malformed policy or fromMint == toMint, raised
//     before the graph is examined.
//   - EXECUTION_DENIED with {fromMint, toMint, maxHops} when no simple path
//     of length in [1, maxHops] exists over the eligible edges.
//
// The same (graph, policy, fromMint, toMint) always yields the same route,
// independent of the order of graph.Edges.
func ComputeRoute(graph domain.LiquidityGraph, policy domain.RoutingPolicy, fromMint, toMint string) (domain.LiquidityRoute, error) {
	if err := ValidatePolicy(policy); err != nil {
		return domain.LiquidityRoute{}, err
	}
	if err := ValidateEndpoints(fromMint, toMint); err != nil {
		return domain.LiquidityRoute{}, err
	}
	return ComputeValidatedRoute(graph, policy, fromMint, toMint)
}

// ComputeValidatedRoute is ComputeRoute without the policy and endpoint
// checks, for callers that already ran ValidatePolicy and ValidateEndpoints.
func ComputeValidatedRoute(graph domain.LiquidityGraph, policy domain.RoutingPolicy, fromMint, toMint string) (domain.LiquidityRoute, error) {
	order := newKeyOrder()
	edges := eligibleEdges(graph, policy, order)

	route, ok := findBestRoute(edges, fromMint, toMint, policy.MaxHops, order)
	if !ok {
		return domain.LiquidityRoute{}, sdkerr.ExecutionDenied("Liquidity safety rejection: no valid route", sdkerr.Details{
			"fromMint": fromMint,
			"toMint":   toMint,
			"maxHops":  policy.MaxHops,
		})
	}
	return route, nil
}
