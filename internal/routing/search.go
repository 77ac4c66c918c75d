package routing

import (
	"sort"
	"strconv"
	"strings"

	"xolium-sdk/internal/domain"
)

// searchState is one partial walk: the asset reached and the edges taken.
type searchState struct {
	mint string
	path []domain.LiquidityEdge
}

// candidate is a completed path with its score and tie-break key.
type candidate struct {
	path  []domain.LiquidityEdge
	score float64
	key   string
}

// walker holds the invocation-local BFS state.
type walker struct {
	fromMint string
	toMint   string
	maxHops  int
	order    *keyOrder

	// outgoing indexes edges by fromMint, preserving canonical order.
	outgoing   map[string][]domain.LiquidityEdge
	queue      []searchState
	seen       map[string]struct{}
	candidates []candidate
}

// FindBestRoute searches edges (already filtered and canonically ordered, see
// EligibleEdges) for the best simple path from fromMint to toMint of length
// in [1, maxHops]. It returns false when no such path exists.
func FindBestRoute(edges []domain.LiquidityEdge, fromMint, toMint string, maxHops int) (domain.LiquidityRoute, bool) {
	return findBestRoute(edges, fromMint, toMint, maxHops, newKeyOrder())
}

func findBestRoute(edges []domain.LiquidityEdge, fromMint, toMint string, maxHops int, order *keyOrder) (domain.LiquidityRoute, bool) {
	w := newWalker(edges, fromMint, toMint, maxHops, order)
	w.loop()
	return w.best()
}

func newWalker(edges []domain.LiquidityEdge, fromMint, toMint string, maxHops int, order *keyOrder) *walker {
	outgoing := make(map[string][]domain.LiquidityEdge)
	for _, e := range edges {
		outgoing[e.FromMint] = append(outgoing[e.FromMint], e)
	}

	return &walker{
		fromMint: fromMint,
		toMint:   toMint,
		maxHops:  maxHops,
		order:    order,
		outgoing: outgoing,
		queue:    []searchState{{mint: fromMint}},
		seen:     make(map[string]struct{}),
	}
}

// loop processes states in FIFO order until the queue is exhausted.
func (w *walker) loop() {
	for len(w.queue) > 0 {
		cur := w.queue[0]
		w.queue = w.queue[1:]
		w.visit(cur)
	}
}

func (w *walker) visit(cur searchState) {
	hops := len(cur.path)
	if hops > w.maxHops {
		return
	}

	key := stateKey(cur)
	if _, dup := w.seen[key]; dup {
		return
	}
	w.seen[key] = struct{}{}

	// Arrival at the destination ends the walk; it is never a pass-through.
	if cur.mint == w.toMint && hops > 0 {
		w.candidates = append(w.candidates, candidate{
			path:  cur.path,
			score: ScoreRoute(cur.path),
			key:   PathKey(cur.path),
		})
		return
	}

	if hops == w.maxHops {
		return
	}

	visited := make(map[string]struct{}, hops+1)
	visited[w.fromMint] = struct{}{}
	for _, e := range cur.path {
		visited[e.ToMint] = struct{}{}
	}

	for _, e := range w.outgoing[cur.mint] {
		if _, cycle := visited[e.ToMint]; cycle {
			continue
		}
		next := make([]domain.LiquidityEdge, hops+1)
		copy(next, cur.path)
		next[hops] = e
		w.queue = append(w.queue, searchState{mint: e.ToMint, path: next})
	}
}

// best selects the highest score, breaking ties by path key ascending.
func (w *walker) best() (domain.LiquidityRoute, bool) {
	if len(w.candidates) == 0 {
		return domain.LiquidityRoute{}, false
	}

	sort.SliceStable(w.candidates, func(i, j int) bool {
		a, b := w.candidates[i], w.candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		return w.order.comparePaths(a.path, b.path, a.key, b.key) < 0
	})

	winner := w.candidates[0]
	path := make([]domain.LiquidityEdge, len(winner.path))
	copy(path, winner.path)
	return domain.LiquidityRoute{Path: path, Score: winner.score}, true
}

// stateKey renders the reached mint and every edge of the path with each
// field length-prefixed, so distinct states never share a key whatever
// characters the identifiers contain.
func stateKey(s searchState) string {
	var b strings.Builder
	writeField(&b, s.mint)
	for _, e := range s.path {
		b.WriteByte('/')
		writeField(&b, e.FromMint)
		writeField(&b, e.ToMint)
		writeField(&b, e.Venue)
	}
	return b.String()
}

func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
