package settlement

import (
	"context"

	"nilclear/pkg/domain"
)

//go:generate mockgen -source=transfers.go -destination=mocks/transfers_mock.go -package=mocks

// Transfers is the fund-movement port backing settlement. MultiTransfer must
// be atomic: either every payout lands or none does.
type Transfers interface {
	// Deposit credits the owner's vault.
	Deposit(ctx context.Context, owner domain.EntityID, amount uint64) error
	// Balance returns the owner's available balance.
	Balance(ctx context.Context, owner domain.EntityID) (uint64, error)
	// MultiTransfer debits the source vault and credits every payout in one
	// atomic step.
	MultiTransfer(ctx context.Context, from domain.EntityID, payouts []Payout) error
	// Withdraw debits the owner's vault by the given amount.
	Withdraw(ctx context.Context, owner domain.EntityID, amount uint64) error
	// ValidRecipient reports whether an entity can receive funds.
	ValidRecipient(ctx context.Context, entity domain.EntityID) (bool, error)
}
