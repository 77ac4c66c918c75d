package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xolium-sdk/internal/contracts"
	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/solana"
	"xolium-sdk/internal/solana/stub"
)

const (
	mintSOL  = "So11111111111111111111111111111111111111112"
	mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintUSDT = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

func testConfig(baseURL string) domain.ClientConfig {
	return domain.ClientConfig{
		RPCEndpoint: "http://127.0.0.1:8899",
		Commitment:  domain.CommitmentConfirmed,
		Retry: domain.RetryPolicy{
			MaxAttempts:              2,
			BaseDelayMs:              1,
			MaxDelayMs:               1,
			RetryableHTTPStatusCodes: []int{503},
		},
		APIs: domain.APIs{
			Network: domain.APIConfig{
				BaseURL:   baseURL,
				TimeoutMs: 2000,
				Routes: map[string]string{
					domain.RouteHealth:         "/network/health",
					domain.RouteMetrics:        "/network/metrics",
					domain.RouteLiquidityGraph: "/network/graph",
				},
			},
			Execution: domain.APIConfig{
				BaseURL:   baseURL,
				TimeoutMs: 2000,
				Routes: map[string]string{
					domain.RouteCredits: "/execution/credits",
					domain.RouteQuote:   "/execution/quote",
					domain.RouteExecute: "/execution/execute",
					domain.RouteYield:   "/execution/yield",
				},
			},
		},
	}
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// newTestClient starts a server answering each path with the given raw JSON.
func newTestClient(t *testing.T, signer Signer, responses map[string]string) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	rpc := stub.NewRPCClient()
	rpc.Slot.Store(4242)

	c, err := New(testConfig(srv.URL), signer, WithRPCClient(rpc), WithRetrySleeper(noSleep))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, &hits
}

func testKeypair(t *testing.T, fill byte) *solana.Keypair {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = fill
	}
	kp, err := solana.KeypairFromSeed(seed)
	require.NoError(t, err)
	return kp
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.Commitment = "instant"
	delete(cfg.APIs.Execution.Routes, domain.RouteYield)

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidInput))

	var sdkErr *sdkerr.Error
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, "Invalid client configuration", sdkErr.Message)
	assert.Contains(t, sdkErr.Error(), "Invalid client configuration")
}

func TestNew_BuildsConnectionFromConfig(t *testing.T) {
	c, err := New(testConfig("http://localhost"), nil)
	require.NoError(t, err)
	defer c.Close()

	conn, ok := c.RPC().(*solana.HTTPClient)
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:8899", conn.Endpoint())
	assert.Equal(t, domain.CommitmentConfirmed, conn.Commitment())
	assert.Nil(t, c.Signer())
}

func TestNetwork_HealthCheck(t *testing.T) {
	c, _ := newTestClient(t, nil, map[string]string{
		"/network/health": `{"status":"ok","timestampMs":1700000000000}`,
	})

	health, err := c.Network.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkHealth{Status: "ok", TimestampMs: 1700000000000}, health)
}

func TestNetwork_HealthCheckContractMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"degraded status", `{"status":"degraded","timestampMs":1}`},
		{"missing timestamp", `{"status":"ok"}`},
		{"unknown field", `{"status":"ok","timestampMs":1,"extra":true}`},
		{"wrong type", `{"status":"ok","timestampMs":"now"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, nil, map[string]string{"/network/health": tt.body})

			_, err := c.Network.HealthCheck(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, sdkerr.ErrContractMismatch))

			var sdkErr *sdkerr.Error
			require.True(t, errors.As(err, &sdkErr))
			assert.Equal(t, "Network health schema mismatch", sdkErr.Message)
			assert.Equal(t, "network", sdkErr.Details["service"])
			assert.Equal(t, "health", sdkErr.Details["route"])
			assert.NotEmpty(t, sdkErr.Details["issues"])
		})
	}
}

func TestNetwork_MetricsOptionalFields(t *testing.T) {
	c, _ := newTestClient(t, nil, map[string]string{
		"/network/metrics": `{"timestampMs":10}`,
	})

	m, err := c.Network.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), m.TimestampMs)
	assert.Nil(t, m.Slot)
	assert.Nil(t, m.LatencyMs)
}

func TestNetwork_LiquidityGraph(t *testing.T) {
	graph := domain.LiquidityGraph{
		AsOfMs: 1000,
		Edges: []domain.LiquidityEdge{
			{FromMint: mintSOL, ToMint: mintUSDC, Venue: "orca", LiquidityUSD: 1000, VolatilityBps: 10},
		},
	}
	body, err := json.Marshal(graph)
	require.NoError(t, err)

	c, _ := newTestClient(t, nil, map[string]string{"/network/graph": string(body)})

	got, err := c.Network.LiquidityGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, graph, got)
}

func TestNetwork_LiquidityGraphInvalidEdge(t *testing.T) {
	c, _ := newTestClient(t, nil, map[string]string{
		"/network/graph": `{"asOfMs":1,"edges":[{"fromMint":"short","toMint":"` + mintUSDC +
			`","venue":"orca","liquidityUsd":1,"volatilityBps":1}]}`,
	})

	_, err := c.Network.LiquidityGraph(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrContractMismatch))
}

func TestNetwork_ServiceUnavailable(t *testing.T) {
	c, hits := newTestClient(t, nil, map[string]string{})

	_, err := c.Network.HealthCheck(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrNetworkUnavailable))
	assert.Equal(t, int32(1), hits.Load(), "404 is not retryable")
}

func TestExecution_Credits(t *testing.T) {
	c, _ := newTestClient(t, nil, map[string]string{
		"/execution/credits": `{"credits":12,"asOfMs":5}`,
	})

	credits, err := c.Execution.Credits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionCreditBalance{Credits: 12, AsOfMs: 5}, credits)
}

func routingPolicy() domain.RoutingPolicy {
	return domain.RoutingPolicy{
		MinLiquidityUSD:  100,
		VolatilityFilter: domain.VolatilityFilter{MaxBps: 50},
		MaxHops:          3,
		AllowVenues:      []string{"orca", "raydium"},
	}
}

func TestExecution_ComputeLiquidityRoute(t *testing.T) {
	c, hits := newTestClient(t, nil, nil)

	graph := domain.LiquidityGraph{
		AsOfMs: 1,
		Edges: []domain.LiquidityEdge{
			{FromMint: mintSOL, ToMint: mintUSDC, Venue: "orca", LiquidityUSD: 500, VolatilityBps: 10},
			{FromMint: mintSOL, ToMint: mintUSDT, Venue: "raydium", LiquidityUSD: 2000, VolatilityBps: 5},
			{FromMint: mintUSDT, ToMint: mintUSDC, Venue: "orca", LiquidityUSD: 2000, VolatilityBps: 5},
		},
	}

	route, err := c.Execution.ComputeLiquidityRoute(graph, routingPolicy(), mintSOL, mintUSDC)
	require.NoError(t, err)
	assert.Equal(t, 2, route.Hops())
	assert.Equal(t, float64(3990), route.Score)
	assert.Equal(t, mintUSDT, route.Path[0].ToMint)
	assert.Equal(t, int32(0), hits.Load(), "routing performs no I/O")
}

func TestExecution_ComputeLiquidityRouteValidationOrder(t *testing.T) {
	c, _ := newTestClient(t, nil, nil)

	badGraph := domain.LiquidityGraph{
		AsOfMs: -1,
		Edges:  []domain.LiquidityEdge{{FromMint: "x", ToMint: "y", Venue: ""}},
	}
	badPolicy := routingPolicy()
	badPolicy.MaxHops = 9

	var sdkErr *sdkerr.Error

	_, err := c.Execution.ComputeLiquidityRoute(badGraph, badPolicy, mintSOL, mintSOL)
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, "maxHops must be an integer in [1,5]", sdkErr.Message)

	_, err = c.Execution.ComputeLiquidityRoute(badGraph, routingPolicy(), mintSOL, mintSOL)
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, "fromMint and toMint must be different", sdkErr.Message)

	_, err = c.Execution.ComputeLiquidityRoute(badGraph, routingPolicy(), mintSOL, mintUSDC)
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, "Invalid liquidity graph", sdkErr.Message)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidInput))
}

func TestExecution_ComputeLiquidityRouteNoRoute(t *testing.T) {
	c, _ := newTestClient(t, nil, nil)

	graph := domain.LiquidityGraph{
		AsOfMs: 1,
		Edges: []domain.LiquidityEdge{
			{FromMint: mintSOL, ToMint: mintUSDC, Venue: "phoenix", LiquidityUSD: 5000, VolatilityBps: 1},
		},
	}

	_, err := c.Execution.ComputeLiquidityRoute(graph, routingPolicy(), mintSOL, mintUSDC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))
}

func quoteRequest() domain.ExecutionQuoteRequest {
	return domain.ExecutionQuoteRequest{
		FromMint:    mintSOL,
		ToMint:      mintUSDC,
		AmountIn:    "1000000",
		SlippageBps: 50,
		Priority:    domain.PriorityRoutingPolicy{Enabled: true, MaxComputeUnitPriceMicroLamports: 1000},
	}
}

func TestExecution_Quote(t *testing.T) {
	c, _ := newTestClient(t, nil, map[string]string{
		"/execution/quote": `{"routeId":"r-1","expectedAmountOut":"990","minAmountOut":"985","priceImpactBps":3,"expiresAtMs":99}`,
	})

	q, err := c.Execution.Quote(context.Background(), quoteRequest())
	require.NoError(t, err)
	assert.Equal(t, "r-1", q.RouteID)
	assert.Equal(t, "985", q.MinAmountOut)
}

func TestExecution_QuoteMinAboveExpected(t *testing.T) {
	c, _ := newTestClient(t, nil, map[string]string{
		"/execution/quote": `{"routeId":"r-1","expectedAmountOut":"990","minAmountOut":"991","priceImpactBps":3,"expiresAtMs":99}`,
	})

	_, err := c.Execution.Quote(context.Background(), quoteRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrContractMismatch))
}

func TestExecution_QuoteInvalidRequest(t *testing.T) {
	c, hits := newTestClient(t, nil, nil)

	req := quoteRequest()
	req.AmountIn = "-5"

	_, err := c.Execution.Quote(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidInput))
	assert.Equal(t, int32(0), hits.Load())
}

func executeRequest(pubkey string) domain.ExecutionExecuteRequest {
	return domain.ExecutionExecuteRequest{
		RouteID:       "r-1",
		SignerPubkey:  pubkey,
		ExplicitOptIn: true,
	}
}

func TestExecution_Execute(t *testing.T) {
	kp := testKeypair(t, 1)
	c, _ := newTestClient(t, kp, map[string]string{
		"/execution/execute": `{"signature":"5sig","submittedAtMs":7}`,
	})

	resp, err := c.Execution.Execute(context.Background(), executeRequest(kp.PublicKey()))
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionExecuteResponse{Signature: "5sig", SubmittedAtMs: 7}, resp)
}

func TestExecution_ExecuteRejectsSigner(t *testing.T) {
	kp := testKeypair(t, 1)
	other := testKeypair(t, 2)
	pda, _, err := contracts.FindProgramAddress([][]byte{[]byte("vault")}, kp.PublicKey())
	require.NoError(t, err)

	tests := []struct {
		name   string
		signer Signer
		pubkey string
	}{
		{"mismatched signer", kp, other.PublicKey()},
		{"off-curve key", nil, pda},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, hits := newTestClient(t, tt.signer, map[string]string{
				"/execution/execute": `{"signature":"5sig","submittedAtMs":7}`,
			})

			_, err := c.Execution.Execute(context.Background(), executeRequest(tt.pubkey))
			require.Error(t, err)
			assert.True(t, errors.Is(err, sdkerr.ErrUnauthorizedSigner))
			assert.Equal(t, int32(0), hits.Load())
		})
	}
}

func TestExecution_ExecuteRequiresOptIn(t *testing.T) {
	kp := testKeypair(t, 1)
	c, _ := newTestClient(t, kp, nil)

	req := executeRequest(kp.PublicKey())
	req.ExplicitOptIn = false

	_, err := c.Execution.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrInvalidInput))
}

func TestExecution_RequestYieldOperation(t *testing.T) {
	c, hits := newTestClient(t, nil, map[string]string{
		"/execution/yield": `{"operationId":"op-1","acceptedAtMs":3}`,
	})

	req := domain.YieldOperationRequest{
		StrategyID:     "lend-usdc",
		NotionalUSD:    1000,
		RiskCeilingBps: 200,
		ExposureCapUSD: 1000,
		ExplicitOptIn:  true,
	}

	res, err := c.Execution.RequestYieldOperation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "op-1", res.OperationID)
	assert.Equal(t, int32(1), hits.Load())

	req.NotionalUSD = 1000.01
	_, err = c.Execution.RequestYieldOperation(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrRiskLimitExceeded))

	var sdkErr *sdkerr.Error
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, "notionalUsd exceeds exposureCapUsd", sdkErr.Message)
	assert.Equal(t, 1000.01, sdkErr.Details["notionalUsd"])
	assert.Equal(t, int32(1), hits.Load(), "risk rejection happens before I/O")
}

func TestClient_Slot(t *testing.T) {
	c, _ := newTestClient(t, nil, nil)

	slot, err := c.Slot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4242), slot)
}

type failingRPC struct {
	*stub.RPCClient
}

func (failingRPC) GetSlot(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestClient_SlotUnavailable(t *testing.T) {
	c, err := New(testConfig("http://localhost"), nil, WithRPCClient(failingRPC{stub.NewRPCClient()}))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Slot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrNetworkUnavailable))

	var sdkErr *sdkerr.Error
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, "solana", sdkErr.Details["service"])
	assert.Equal(t, "getSlot", sdkErr.Details["method"])
}

func TestClient_Lifecycle(t *testing.T) {
	c, hits := newTestClient(t, nil, map[string]string{
		"/network/health": `{"status":"ok","timestampMs":1}`,
	})

	require.NoError(t, c.AssertNotDisposed())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err := c.AssertNotDisposed()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))
	assert.Contains(t, err.Error(), "Client is disposed")

	_, err = c.Network.HealthCheck(context.Background())
	assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))
	_, err = c.Execution.Credits(context.Background())
	assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))
	_, err = c.Execution.ComputeLiquidityRoute(domain.LiquidityGraph{}, routingPolicy(), mintSOL, mintUSDC)
	assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))
	_, err = c.Slot(context.Background())
	assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))
	_, err = c.SubscribeSlots(context.Background())
	assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))

	assert.Equal(t, int32(0), hits.Load())
}

func TestClient_SubscribeSlotsRacingClose(t *testing.T) {
	c, _ := newTestClient(t, nil, map[string]string{})

	// Hold the socket lock so the subscription waits while the client is
	// disposed, as when Close wins the race after the first lifecycle check.
	c.wsMu.Lock()
	done := make(chan error, 1)
	go func() {
		_, err := c.SubscribeSlots(context.Background())
		done <- err
	}()
	c.life.disposed.Store(true)
	c.wsMu.Unlock()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, sdkerr.ErrExecutionDenied))
	case <-time.After(5 * time.Second):
		t.Fatal("SubscribeSlots did not return")
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	assert.Nil(t, c.ws)
}
