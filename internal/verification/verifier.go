// Package verification replays routing on stored graph snapshots and checks
// that the chosen route does not depend on the order edges arrived in.
package verification

import (
	"context"
	"math"

	"xolium-sdk/internal/sdkerr"
)

// ScoreTolerance is the tolerance for score comparisons.
const ScoreTolerance = 1e-9

// FieldDivergence represents a mismatch between the baseline and a replay.
type FieldDivergence struct {
	Permutation string      // permutation that diverged
	Field       string      // field name
	Expected    interface{} // baseline value
	Actual      interface{} // replayed value
}

// Pair is a directed route request.
type Pair struct {
	FromMint string `json:"fromMint"`
	ToMint   string `json:"toMint"`
}

// Outcome is the comparable result of one route computation.
type Outcome struct {
	Found       bool        `json:"found"`
	Fingerprint string      `json:"fingerprint,omitempty"`
	Hops        int         `json:"hops"`
	Score       float64     `json:"score"`
	ErrCode     sdkerr.Code `json:"errCode,omitempty"`
}

// VerificationResult contains the result of verifying one pair on one snapshot.
type VerificationResult struct {
	SnapshotID  string            `json:"snapshotId"`
	Pair        Pair              `json:"pair"`
	Match       bool              `json:"match"`
	Baseline    Outcome           `json:"baseline"`
	Divergences []FieldDivergence `json:"divergences,omitempty"`
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	Total     int                  `json:"total"`
	Matched   int                  `json:"matched"`
	Divergent int                  `json:"divergent"`
	Results   []VerificationResult `json:"results"`
}

// Add counts res and appends it to the report.
func (r *VerificationReport) Add(res VerificationResult) {
	r.Total++
	if res.Match {
		r.Matched++
	} else {
		r.Divergent++
	}
	r.Results = append(r.Results, res)
}

// Verifier verifies stored snapshots.
type Verifier interface {
	// VerifySnapshot replays every configured pair on one snapshot.
	VerifySnapshot(ctx context.Context, snapshotID string) ([]VerificationResult, error)

	// VerifyRange verifies every snapshot with as_of_ms within [start, end].
	VerifyRange(ctx context.Context, start, end int64) (*VerificationReport, error)
}

// CompareOutcomes compares a replayed outcome against the baseline.
func CompareOutcomes(permutation string, baseline, replayed Outcome) []FieldDivergence {
	var divergences []FieldDivergence
	diverge := func(field string, expected, actual interface{}) {
		divergences = append(divergences, FieldDivergence{
			Permutation: permutation,
			Field:       field,
			Expected:    expected,
			Actual:      actual,
		})
	}

	if baseline.Found != replayed.Found {
		diverge("Found", baseline.Found, replayed.Found)
	}
	if baseline.ErrCode != replayed.ErrCode {
		diverge("ErrCode", baseline.ErrCode, replayed.ErrCode)
	}
	if baseline.Fingerprint != replayed.Fingerprint {
		diverge("Fingerprint", baseline.Fingerprint, replayed.Fingerprint)
	}
	if baseline.Hops != replayed.Hops {
		diverge("Hops", baseline.Hops, replayed.Hops)
	}
	if math.Abs(baseline.Score-replayed.Score) > ScoreTolerance {
		diverge("Score", baseline.Score, replayed.Score)
	}
	return divergences
}
