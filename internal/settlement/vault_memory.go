package settlement

import (
	"context"
	"sync"

	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/platform/sentinel"
)

// InMemoryVault is a process-local Transfers implementation. Balances live in
// a single map guarded by one mutex, which makes MultiTransfer trivially
// atomic.
type InMemoryVault struct {
	mu       sync.Mutex
	balances map[domain.EntityID]uint64
}

func NewInMemoryVault() *InMemoryVault {
	return &InMemoryVault{
		balances: make(map[domain.EntityID]uint64),
	}
}

func (v *InMemoryVault) Deposit(_ context.Context, owner domain.EntityID, amount uint64) error {
	if owner.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "vault owner is required")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balances[owner] += amount
	return nil
}

func (v *InMemoryVault) Balance(_ context.Context, owner domain.EntityID) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[owner], nil
}

func (v *InMemoryVault) MultiTransfer(_ context.Context, from domain.EntityID, payouts []Payout) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var total uint64
	for _, p := range payouts {
		if p.Beneficiary.IsZero() {
			return dErrors.New(dErrors.CodeTransferFailed, "payout beneficiary is required")
		}
		total += p.Amount
	}
	if v.balances[from] < total {
		return sentinel.ErrInsufficientFunds
	}

	v.balances[from] -= total
	for _, p := range payouts {
		v.balances[p.Beneficiary] += p.Amount
	}
	return nil
}

func (v *InMemoryVault) Withdraw(_ context.Context, owner domain.EntityID, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.balances[owner] < amount {
		return sentinel.ErrInsufficientFunds
	}
	v.balances[owner] -= amount
	return nil
}

func (v *InMemoryVault) ValidRecipient(_ context.Context, entity domain.EntityID) (bool, error) {
	return !entity.IsZero(), nil
}
