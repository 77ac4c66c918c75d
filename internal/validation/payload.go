package validation

import (
	"fmt"
	"math"
	"regexp"

	"github.com/shopspring/decimal"

	"xolium-sdk/internal/domain"
)

// Mint and signer addresses are base58 public keys.
const (
	minAddressLen = 32
	maxAddressLen = 44
)

var unsignedInteger = regexp.MustCompile(`^\d+$`)

// NetworkHealth checks a health probe response.
func NetworkHealth(h domain.NetworkHealth) Issues {
	var issues Issues
	if h.Status != domain.NetworkHealthOK {
		issues.add("status", "must be %q", domain.NetworkHealthOK)
	}
	nonNegative(&issues, "timestampMs", h.TimestampMs)
	return issues
}

// NetworkMetrics checks a metrics response.
func NetworkMetrics(m domain.NetworkMetrics) Issues {
	var issues Issues
	nonNegative(&issues, "timestampMs", m.TimestampMs)
	if m.Slot != nil {
		nonNegative(&issues, "slot", *m.Slot)
	}
	if m.LatencyMs != nil {
		nonNegative(&issues, "latencyMs", *m.LatencyMs)
	}
	return issues
}

// LiquidityEdge checks one graph edge.
func LiquidityEdge(e domain.LiquidityEdge) Issues {
	var issues Issues
	address(&issues, "fromMint", e.FromMint)
	address(&issues, "toMint", e.ToMint)
	if e.Venue == "" {
		issues.add("venue", "must be non-empty")
	}
	if math.IsNaN(e.LiquidityUSD) || math.IsInf(e.LiquidityUSD, 0) || e.LiquidityUSD < 0 {
		issues.add("liquidityUsd", "must be a finite non-negative number")
	}
	int64Range(&issues, "volatilityBps", e.VolatilityBps, 0, 100_000)
	return issues
}

// LiquidityGraph checks a graph snapshot and each of its edges.
func LiquidityGraph(g domain.LiquidityGraph) Issues {
	var issues Issues
	nonNegative(&issues, "asOfMs", g.AsOfMs)
	for i, e := range g.Edges {
		issues.merge(indexPath("edges", i), LiquidityEdge(e))
	}
	return issues
}

// PriorityRoutingPolicy checks compute-unit price bounds.
func PriorityRoutingPolicy(p domain.PriorityRoutingPolicy) Issues {
	var issues Issues
	int64Range(&issues, "maxComputeUnitPriceMicroLamports", p.MaxComputeUnitPriceMicroLamports, 0, 10_000_000)
	return issues
}

// ExecutionCreditBalance checks a credits response.
func ExecutionCreditBalance(b domain.ExecutionCreditBalance) Issues {
	var issues Issues
	nonNegative(&issues, "credits", b.Credits)
	nonNegative(&issues, "asOfMs", b.AsOfMs)
	return issues
}

// ExecutionQuoteRequest checks a quote request.
func ExecutionQuoteRequest(r domain.ExecutionQuoteRequest) Issues {
	var issues Issues
	address(&issues, "fromMint", r.FromMint)
	address(&issues, "toMint", r.ToMint)
	amount(&issues, "amountIn", r.AmountIn)
	int64Range(&issues, "slippageBps", r.SlippageBps, 0, 10_000)
	issues.merge("priority", PriorityRoutingPolicy(r.Priority))
	return issues
}

// ExecutionQuoteResponse checks a quote. The guaranteed minimum must not
// exceed the expected output.
func ExecutionQuoteResponse(r domain.ExecutionQuoteResponse) Issues {
	var issues Issues
	if r.RouteID == "" {
		issues.add("routeId", "must be non-empty")
	}
	expected, okExpected := amount(&issues, "expectedAmountOut", r.ExpectedAmountOut)
	minimum, okMin := amount(&issues, "minAmountOut", r.MinAmountOut)
	if okExpected && okMin && minimum.GreaterThan(expected) {
		issues.add("minAmountOut", "must not exceed expectedAmountOut")
	}
	int64Range(&issues, "priceImpactBps", r.PriceImpactBps, 0, 10_000)
	nonNegative(&issues, "expiresAtMs", r.ExpiresAtMs)
	return issues
}

// ExecutionExecuteRequest checks an execute request, including explicit opt-in.
func ExecutionExecuteRequest(r domain.ExecutionExecuteRequest) Issues {
	var issues Issues
	if r.RouteID == "" {
		issues.add("routeId", "must be non-empty")
	}
	address(&issues, "signerPubkey", r.SignerPubkey)
	issues.merge("priority", PriorityRoutingPolicy(r.Priority))
	if !r.ExplicitOptIn {
		issues.add("explicitOptIn", "must be true")
	}
	return issues
}

// ExecutionExecuteResponse checks a submission acknowledgement.
func ExecutionExecuteResponse(r domain.ExecutionExecuteResponse) Issues {
	var issues Issues
	if r.Signature == "" {
		issues.add("signature", "must be non-empty")
	}
	nonNegative(&issues, "submittedAtMs", r.SubmittedAtMs)
	return issues
}

// YieldOperationRequest checks a yield request, including explicit opt-in.
func YieldOperationRequest(r domain.YieldOperationRequest) Issues {
	var issues Issues
	if r.StrategyID == "" {
		issues.add("strategyId", "must be non-empty")
	}
	positive(&issues, "notionalUsd", r.NotionalUSD)
	int64Range(&issues, "riskCeilingBps", r.RiskCeilingBps, 0, 10_000)
	positive(&issues, "exposureCapUsd", r.ExposureCapUSD)
	if !r.ExplicitOptIn {
		issues.add("explicitOptIn", "must be true")
	}
	return issues
}

// YieldOperationResult checks a yield acknowledgement.
func YieldOperationResult(r domain.YieldOperationResult) Issues {
	var issues Issues
	if r.OperationID == "" {
		issues.add("operationId", "must be non-empty")
	}
	nonNegative(&issues, "acceptedAtMs", r.AcceptedAtMs)
	return issues
}

func address(issues *Issues, path, s string) {
	if n := len(s); n < minAddressLen || n > maxAddressLen {
		issues.add(path, "must be %d-%d characters", minAddressLen, maxAddressLen)
	}
}

// amount checks a base-unit integer string and returns its value.
func amount(issues *Issues, path, s string) (decimal.Decimal, bool) {
	if !unsignedInteger.MatchString(s) {
		issues.add(path, "must be an unsigned integer string")
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		issues.add(path, "%v", err)
		return decimal.Decimal{}, false
	}
	return d, true
}

func positive(issues *Issues, path string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		issues.add(path, "must be a finite positive number")
	}
}

func nonNegative(issues *Issues, path string, v int64) {
	if v < 0 {
		issues.add(path, "must be >= 0")
	}
}

func intRange(issues *Issues, path string, v, lo, hi int) {
	int64Range(issues, path, int64(v), int64(lo), int64(hi))
}

func int64Range(issues *Issues, path string, v, lo, hi int64) {
	if v < lo || v > hi {
		issues.add(path, "must be in [%d,%d]", lo, hi)
	}
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
