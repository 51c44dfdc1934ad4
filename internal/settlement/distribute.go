package settlement

import (
	"nilclear/pkg/domain"
)

// Payout is one beneficiary's share of a settled amount.
type Payout struct {
	Beneficiary domain.EntityID `json:"beneficiary"`
	Amount      uint64          `json:"amount"`
}

// Distribute computes per-beneficiary payouts from a validated split list
// using integer arithmetic only. Each payout is floor(amount*bps/10000); the
// division remainder goes to the first beneficiary so the payouts always sum
// to amount exactly.
func Distribute(amount uint64, splits []domain.Split) ([]Payout, error) {
	if err := domain.ValidateSplits(splits); err != nil {
		return nil, err
	}

	payouts := make([]Payout, len(splits))
	var distributed uint64
	for i, split := range splits {
		payout := amount / domain.TotalBPS * uint64(split.BPS)
		payout += amount % domain.TotalBPS * uint64(split.BPS) / domain.TotalBPS
		payouts[i] = Payout{Beneficiary: split.Beneficiary, Amount: payout}
		distributed += payout
	}
	payouts[0].Amount += amount - distributed
	return payouts, nil
}
