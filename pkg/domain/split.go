package domain

import dErrors "nilclear/pkg/domain-errors"

// TotalBPS is the basis-point total a revenue split must sum to exactly.
const TotalBPS = 10_000

// Split assigns a share of a deal, in basis points, to one beneficiary.
// Order matters: the first beneficiary absorbs any rounding remainder at
// settlement time.
type Split struct {
	Beneficiary EntityID `json:"beneficiary"`
	BPS         uint32   `json:"bps"`
}

// ValidateSplits enforces the structural invariants of a revenue split:
// non-empty, unique beneficiaries, and basis points summing to exactly 10000.
//
// Errors: CodeInvalidSplit on any violation. Deals with invalid splits are
// rejected at creation and never reach compliance evaluation.
func ValidateSplits(splits []Split) error {
	if len(splits) == 0 {
		return dErrors.New(dErrors.CodeInvalidSplit, "splits cannot be empty")
	}
	seen := make(map[EntityID]bool, len(splits))
	var total uint64
	for _, s := range splits {
		if s.Beneficiary.IsZero() {
			return dErrors.New(dErrors.CodeInvalidSplit, "split beneficiary cannot be zero")
		}
		if seen[s.Beneficiary] {
			return dErrors.Newf(dErrors.CodeInvalidSplit, "duplicate beneficiary %s", s.Beneficiary)
		}
		seen[s.Beneficiary] = true
		total += uint64(s.BPS)
	}
	if total != TotalBPS {
		return dErrors.Newf(dErrors.CodeInvalidSplit, "splits sum to %d bps, want %d", total, TotalBPS)
	}
	return nil
}
