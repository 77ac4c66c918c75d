package domain

// LiquidityEdge is a directed, venue-specific trading link between two mints.
// Edges are immutable values; a graph snapshot owns its edges exclusively.
type LiquidityEdge struct {
	FromMint      string  `json:"fromMint"`
	ToMint        string  `json:"toMint"`
	Venue         string  `json:"venue"`
	LiquidityUSD  float64 `json:"liquidityUsd"`
	VolatilityBps int64   `json:"volatilityBps"`
}

// LiquidityGraph is an "as-of" snapshot of all known edges.
// Producers guarantee no ordering of Edges.
type LiquidityGraph struct {
	AsOfMs int64           `json:"asOfMs"`
	Edges  []LiquidityEdge `json:"edges"`
}

// VolatilityFilter bounds per-edge volatility.
type VolatilityFilter struct {
	MaxBps int64 `json:"maxBps" yaml:"max_bps"`
}

// RoutingPolicy constrains which edges a route may use and how long it may be.
type RoutingPolicy struct {
	MinLiquidityUSD  float64          `json:"minLiquidityUsd" yaml:"min_liquidity_usd"`
	VolatilityFilter VolatilityFilter `json:"volatilityFilter" yaml:"volatility_filter"`
	MaxHops          int              `json:"maxHops" yaml:"max_hops"`
	AllowVenues      []string         `json:"allowVenues" yaml:"allow_venues"`
}

// AllowsVenue reports whether venue is in the allow-list.
func (p RoutingPolicy) AllowsVenue(venue string) bool {
	for _, v := range p.AllowVenues {
		if v == venue {
			return true
		}
	}
	return false
}

// LiquidityRoute is a completed simple path plus its score.
type LiquidityRoute struct {
	Path  []LiquidityEdge `json:"path"`
	Score float64         `json:"score"`
}

// Hops returns the number of edges in the route.
func (r LiquidityRoute) Hops() int {
	return len(r.Path)
}
