package kyc

import (
	"time"

	"nilclear/pkg/domain"
)

// Record is one entity's verification state. One record per entity,
// overwritten on re-verification. Expired records are treated as absent by
// every consumer; they are never deleted.
type Record struct {
	Entity       domain.EntityID     `json:"entity"`
	Tier         domain.Tier         `json:"tier"`
	Jurisdiction domain.Jurisdiction `json:"jurisdiction"`
	DocumentHash string              `json:"document_hash"`
	VerifiedAt   time.Time           `json:"verified_at"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

// Expired reports whether the record is unusable at the given time.
// A record expiring exactly now is already expired.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
