package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"xolium-sdk/internal/contracts"
	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/routing"
	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/transport"
	"xolium-sdk/internal/validation"
)

// ExecutionClient prices and submits swaps, computes liquidity routes
// locally and requests yield operations.
type ExecutionClient struct {
	requester *transport.Requester
	life      *lifecycle
	signer    Signer
	logger    zerolog.Logger
}

// Credits returns the remaining execution credits.
func (x *ExecutionClient) Credits(ctx context.Context) (domain.ExecutionCreditBalance, error) {
	if err := x.life.assert(); err != nil {
		return domain.ExecutionCreditBalance{}, err
	}
	return call(ctx, x.requester,
		transport.Request{Method: http.MethodGet, Route: domain.RouteCredits},
		"Execution credits schema mismatch", validation.ExecutionCreditBalance,
		"credits", "asOfMs")
}

// ComputeLiquidityRoute picks the best route through graph without any I/O.
// The policy is validated first, then the endpoints, then the graph.
func (x *ExecutionClient) ComputeLiquidityRoute(
	graph domain.LiquidityGraph,
	policy domain.RoutingPolicy,
	fromMint, toMint string,
) (domain.LiquidityRoute, error) {
	if err := x.life.assert(); err != nil {
		return domain.LiquidityRoute{}, err
	}

	start := time.Now()
	route, err := x.computeRoute(graph, policy, fromMint, toMint)
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		observability.RecordRoute("ok", route.Hops(), len(graph.Edges), elapsed)
		x.logger.Debug().
			Str("from", fromMint).
			Str("to", toMint).
			Int("hops", route.Hops()).
			Float64("score", route.Score).
			Msg("route computed")
	case errors.Is(err, sdkerr.ErrExecutionDenied):
		observability.RecordRoute("denied", 0, len(graph.Edges), elapsed)
	default:
		observability.RecordRoute("invalid", 0, len(graph.Edges), elapsed)
	}
	return route, err
}

func (x *ExecutionClient) computeRoute(
	graph domain.LiquidityGraph,
	policy domain.RoutingPolicy,
	fromMint, toMint string,
) (domain.LiquidityRoute, error) {
	if err := routing.ValidatePolicy(policy); err != nil {
		return domain.LiquidityRoute{}, err
	}
	if err := routing.ValidateEndpoints(fromMint, toMint); err != nil {
		return domain.LiquidityRoute{}, err
	}
	if err := validation.LiquidityGraph(graph).InvalidInput("Invalid liquidity graph"); err != nil {
		return domain.LiquidityRoute{}, err
	}
	return routing.ComputeValidatedRoute(graph, policy, fromMint, toMint)
}

// Quote prices a swap.
func (x *ExecutionClient) Quote(ctx context.Context, req domain.ExecutionQuoteRequest) (domain.ExecutionQuoteResponse, error) {
	if err := x.life.assert(); err != nil {
		return domain.ExecutionQuoteResponse{}, err
	}
	if err := validation.ExecutionQuoteRequest(req).InvalidInput("Invalid quote request"); err != nil {
		return domain.ExecutionQuoteResponse{}, err
	}
	return call(ctx, x.requester,
		transport.Request{Method: http.MethodPost, Route: domain.RouteQuote, Body: req},
		"Execution quote schema mismatch", validation.ExecutionQuoteResponse,
		"routeId", "expectedAmountOut", "minAmountOut", "priceImpactBps", "expiresAtMs")
}

// Execute submits a quoted route. The signer key must be a valid ed25519
// point and, when the client has a signer, must be that signer's key.
func (x *ExecutionClient) Execute(ctx context.Context, req domain.ExecutionExecuteRequest) (domain.ExecutionExecuteResponse, error) {
	if err := x.life.assert(); err != nil {
		return domain.ExecutionExecuteResponse{}, err
	}
	if err := validation.ExecutionExecuteRequest(req).InvalidInput("Invalid execute request"); err != nil {
		return domain.ExecutionExecuteResponse{}, err
	}
	if err := x.checkSigner(req.SignerPubkey); err != nil {
		return domain.ExecutionExecuteResponse{}, err
	}

	resp, err := call(ctx, x.requester,
		transport.Request{Method: http.MethodPost, Route: domain.RouteExecute, Body: req},
		"Execution execute schema mismatch", validation.ExecutionExecuteResponse,
		"signature", "submittedAtMs")
	if err != nil {
		return resp, err
	}

	x.logger.Info().
		Str("route_id", req.RouteID).
		Str("signature", resp.Signature).
		Msg("execution submitted")
	return resp, nil
}

func (x *ExecutionClient) checkSigner(pubkey string) error {
	if !contracts.IsOnCurveString(pubkey) {
		return sdkerr.UnauthorizedSigner("Signer public key is not a valid ed25519 key", sdkerr.Details{
			"signerPubkey": pubkey,
		})
	}
	if x.signer != nil && x.signer.PublicKey() != pubkey {
		return sdkerr.UnauthorizedSigner("Signer public key does not match client signer", sdkerr.Details{
			"signerPubkey": pubkey,
			"clientSigner": x.signer.PublicKey(),
		})
	}
	return nil
}

// RequestYieldOperation asks the service to open a yield position.
// Requests whose notional exceeds their own exposure cap never leave the client.
func (x *ExecutionClient) RequestYieldOperation(ctx context.Context, req domain.YieldOperationRequest) (domain.YieldOperationResult, error) {
	if err := x.life.assert(); err != nil {
		return domain.YieldOperationResult{}, err
	}
	if err := validation.YieldOperationRequest(req).InvalidInput("Invalid yield operation request"); err != nil {
		return domain.YieldOperationResult{}, err
	}
	if req.NotionalUSD > req.ExposureCapUSD {
		return domain.YieldOperationResult{}, sdkerr.RiskLimitExceeded("notionalUsd exceeds exposureCapUsd", sdkerr.Details{
			"notionalUsd":    req.NotionalUSD,
			"exposureCapUsd": req.ExposureCapUSD,
		})
	}
	return call(ctx, x.requester,
		transport.Request{Method: http.MethodPost, Route: domain.RouteYield, Body: req},
		"Yield operation schema mismatch", validation.YieldOperationResult,
		"operationId", "acceptedAtMs")
}
