package routing

import (
	"math"

	"xolium-sdk/internal/domain"
)

// ScoreRoute computes floor(Σ liquidityUsd) − Σ volatilityBps over path.
// Higher is better. Liquidity and volatility units are not normalised.
func ScoreRoute(path []domain.LiquidityEdge) float64 {
	var liquidity float64
	var volatility int64
	for _, e := range path {
		liquidity += e.LiquidityUSD
		volatility += e.VolatilityBps
	}
	return math.Floor(liquidity) - float64(volatility)
}
