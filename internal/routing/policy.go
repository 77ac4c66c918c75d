package routing

import (
	"math"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/sdkerr"
)

// Hop bounds accepted by ValidatePolicy.
const (
	MinHops = 1
	MaxHops = 5
)

// ValidatePolicy rejects a structurally invalid policy with INVALID_INPUT.
// Checks run in a fixed order and the first violation is reported.
func ValidatePolicy(policy domain.RoutingPolicy) error {
	if math.IsNaN(policy.MinLiquidityUSD) || math.IsInf(policy.MinLiquidityUSD, 0) || policy.MinLiquidityUSD < 0 {
		return sdkerr.InvalidInputDetails("minLiquidityUsd must be a non-negative number", sdkerr.Details{
			"minLiquidityUsd": policy.MinLiquidityUSD,
		})
	}
	if policy.VolatilityFilter.MaxBps < 0 {
		return sdkerr.InvalidInputDetails("volatilityFilter.maxBps must be a non-negative integer", sdkerr.Details{
			"maxBps": policy.VolatilityFilter.MaxBps,
		})
	}
	if policy.MaxHops < MinHops || policy.MaxHops > MaxHops {
		return sdkerr.InvalidInputDetails("maxHops must be an integer in [1,5]", sdkerr.Details{
			"maxHops": policy.MaxHops,
		})
	}
	if len(policy.AllowVenues) == 0 {
		return sdkerr.InvalidInputDetails("allowVenues must be non-empty", sdkerr.Details{
			"allowVenues": policy.AllowVenues,
		})
	}
	for _, v := range policy.AllowVenues {
		if v == "" {
			return sdkerr.InvalidInputDetails("allowVenues contains invalid entry", sdkerr.Details{
				"venue": v,
			})
		}
	}
	return nil
}

// ValidateEndpoints rejects a route request whose source is its destination.
func ValidateEndpoints(fromMint, toMint string) error {
	if fromMint == toMint {
		return sdkerr.InvalidInputDetails("fromMint and toMint must be different", sdkerr.Details{
			"fromMint": fromMint,
			"toMint":   toMint,
		})
	}
	return nil
}
