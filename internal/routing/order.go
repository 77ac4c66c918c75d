package routing

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"xolium-sdk/internal/domain"
)

// Separators used to build canonical keys. Identifiers may contain them, so
// two distinct edges or paths can render the same key; comparisons fall back
// to the individual fields when keys are equal.
const (
	keyFieldSep = "|"
	keyEdgeSep  = "~"
)

// EdgeKey renders the canonical ordering key fromMint|toMint|venue.
func EdgeKey(e domain.LiquidityEdge) string {
	return e.FromMint + keyFieldSep + e.ToMint + keyFieldSep + e.Venue
}

// PathKey renders the tie-break key of a path: edge keys joined in path order.
func PathKey(path []domain.LiquidityEdge) string {
	var b strings.Builder
	for i, e := range path {
		if i > 0 {
			b.WriteString(keyEdgeSep)
		}
		b.WriteString(EdgeKey(e))
	}
	return b.String()
}

// keyOrder compares canonical keys: root-locale collation first, then bytes.
// The byte fallback makes the order total when collation deems two distinct
// strings equal. A collate.Collator is not safe for concurrent use, so every
// computation owns its keyOrder.
type keyOrder struct {
	collator *collate.Collator
}

func newKeyOrder() *keyOrder {
	return &keyOrder{collator: collate.New(language.Und)}
}

// compare returns negative if a < b, zero if a == b, positive if a > b.
func (o *keyOrder) compare(a, b string) int {
	if a == b {
		return 0
	}
	if c := o.collator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// compareEdges orders edges by key, then by the key's fields. Edges sharing
// all fields are ordered preferred first: higher liquidity, then lower
// volatility. The search keeps only the first edge of a key per state, so
// this picks the dominating duplicate.
func (o *keyOrder) compareEdges(a, b domain.LiquidityEdge, aKey, bKey string) int {
	if c := o.compare(aKey, bKey); c != 0 {
		return c
	}
	if c := o.compareFields(a, b); c != 0 {
		return c
	}
	return compareEdgeAttributes(a, b)
}

// comparePaths orders equal-score paths by path key. Paths with equal keys
// are ordered shorter first, then edge by edge on fields and attributes.
func (o *keyOrder) comparePaths(a, b []domain.LiquidityEdge, aKey, bKey string) int {
	if c := o.compare(aKey, bKey); c != 0 {
		return c
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if c := o.compareFields(a[i], b[i]); c != 0 {
			return c
		}
	}
	for i := range a {
		if c := compareEdgeAttributes(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareFields compares fromMint, toMint and venue in turn.
func (o *keyOrder) compareFields(a, b domain.LiquidityEdge) int {
	if c := o.compare(a.FromMint, b.FromMint); c != 0 {
		return c
	}
	if c := o.compare(a.ToMint, b.ToMint); c != 0 {
		return c
	}
	return o.compare(a.Venue, b.Venue)
}

func compareEdgeAttributes(a, b domain.LiquidityEdge) int {
	if a.LiquidityUSD != b.LiquidityUSD {
		if a.LiquidityUSD > b.LiquidityUSD {
			return -1
		}
		return 1
	}
	if a.VolatilityBps != b.VolatilityBps {
		if a.VolatilityBps < b.VolatilityBps {
			return -1
		}
		return 1
	}
	return 0
}
