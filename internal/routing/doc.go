// Package routing computes a deterministic best execution route through a
// multi-venue liquidity graph.
//
// The computation is pure and synchronous: it performs no I/O, keeps no state
// between calls and only allocates invocation-local structures, so it is safe
// to call concurrently with independent inputs. It does not observe
// cancellation; callers bound wall-clock time externally.
//
// Pipeline: ValidatePolicy → EligibleEdges (filter + canonical order) →
// FindBestRoute (BFS over simple paths within the hop bound) → ScoreRoute.
// ComputeRoute runs the whole pipeline and maps failures to sdkerr codes.
package routing
