package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names a domain occurrence captured for the audit trail. The
// downstream reporting collaborator synthesizes payment messages from
// deal_executed events; compliance_evaluated always precedes deal_executed
// for the same deal.
type Action string

const (
	ActionDealCreated         Action = "deal_created"
	ActionComplianceEvaluated Action = "compliance_evaluated"
	ActionDealExecuted        Action = "deal_executed"
	ActionDealCancelled       Action = "deal_cancelled"
	ActionSanctionsListed     Action = "sanctions_listed"
	ActionSanctionsDelisted   Action = "sanctions_delisted"
	ActionAthleteVerified     Action = "athlete_verified"
	ActionThresholdsUpdated   Action = "thresholds_updated"
	ActionJurisdictionUpdated Action = "jurisdiction_updated"
	ActionPlatformRegistered  Action = "platform_registered"
	ActionEmergencyWithdrawal Action = "emergency_withdrawal"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Action    Action
	// DealID groups events for ordering guarantees; empty for registry and
	// policy events.
	DealID string
	// Entity is the primary subject (athlete, sanctioned party, vault owner).
	Entity       string
	Counterparty string
	Amount       uint64
	Decision     string
	Reason       string
	RequestID    string
	ActorID      string
	// Detail carries the action-specific breakdown (payout list, compliance
	// flags) as pre-marshaled JSON.
	Detail []byte
}
