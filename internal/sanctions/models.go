package sanctions

import (
	"time"

	"nilclear/pkg/domain"
)

// Entry records one appearance of an entity on a blocklist. Entries are never
// deleted: delisting flips Listed to false and keeps the row for audit.
// An entity with any Listed entry is a hard veto regardless of deal amount.
type Entry struct {
	Entity       domain.EntityID `json:"entity"`
	ListName     string          `json:"list_name"`
	Reason       string          `json:"reason"`
	EvidenceHash string          `json:"evidence_hash"`
	Listed       bool            `json:"listed"`
	ListedAt     time.Time       `json:"listed_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
