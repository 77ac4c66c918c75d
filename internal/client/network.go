package client

import (
	"context"
	"net/http"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/transport"
	"xolium-sdk/internal/validation"
)

// NetworkClient reads service health, chain metrics and the liquidity graph.
type NetworkClient struct {
	requester *transport.Requester
	life      *lifecycle
}

// HealthCheck calls the health route. Any status other than "ok" is a
// contract mismatch.
func (n *NetworkClient) HealthCheck(ctx context.Context) (domain.NetworkHealth, error) {
	if err := n.life.assert(); err != nil {
		return domain.NetworkHealth{}, err
	}
	return call(ctx, n.requester,
		transport.Request{Method: http.MethodGet, Route: domain.RouteHealth},
		"Network health schema mismatch", validation.NetworkHealth,
		"status", "timestampMs")
}

// Metrics calls the metrics route. Slot and LatencyMs stay nil when absent.
func (n *NetworkClient) Metrics(ctx context.Context) (domain.NetworkMetrics, error) {
	if err := n.life.assert(); err != nil {
		return domain.NetworkMetrics{}, err
	}
	return call(ctx, n.requester,
		transport.Request{Method: http.MethodGet, Route: domain.RouteMetrics},
		"Network metrics schema mismatch", validation.NetworkMetrics,
		"timestampMs")
}

// LiquidityGraph fetches the current liquidity graph.
func (n *NetworkClient) LiquidityGraph(ctx context.Context) (domain.LiquidityGraph, error) {
	if err := n.life.assert(); err != nil {
		return domain.LiquidityGraph{}, err
	}
	return call(ctx, n.requester,
		transport.Request{Method: http.MethodGet, Route: domain.RouteLiquidityGraph},
		"Liquidity graph schema mismatch", validation.LiquidityGraph,
		"asOfMs", "edges")
}
