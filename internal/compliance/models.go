package compliance

import (
	"time"

	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
)

// Rejection reasons carried on a CheckResult. These are recorded verbatim in
// the audit trail and surfaced to dashboards, so treat them as stable strings.
const (
	ReasonApproved                = "Approved"
	ReasonSanctionsHit            = "SanctionsHit"
	ReasonJurisdictionNotApproved = "JurisdictionNotApproved"
	ReasonTierLimitExceeded       = "TierLimitExceeded"
	ReasonDailyLimitExceeded      = "DailyLimitExceeded"
	ReasonMonthlyLimitExceeded    = "MonthlyLimitExceeded"
)

// Thresholds is the process-wide compliance configuration. Amounts are in the
// smallest integer unit of the settlement currency.
type Thresholds struct {
	BasicLimit         uint64    `json:"basic_limit"`
	EnhancedLimit      uint64    `json:"enhanced_limit"`
	InstitutionalLimit uint64    `json:"institutional_limit"`
	DailyLimit         uint64    `json:"daily_limit"`
	MonthlyLimit       uint64    `json:"monthly_limit"`
	Version            int64     `json:"version"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultThresholds are non-zero placeholders. Operators must set real values
// before production use.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BasicLimit:         5_000_00,
		EnhancedLimit:      50_000_00,
		InstitutionalLimit: 500_000_00,
		DailyLimit:         100_000_00,
		MonthlyLimit:       1_000_000_00,
		Version:            1,
	}
}

func (t Thresholds) Validate() error {
	if t.BasicLimit == 0 || t.EnhancedLimit == 0 || t.InstitutionalLimit == 0 ||
		t.DailyLimit == 0 || t.MonthlyLimit == 0 {
		return dErrors.New(dErrors.CodeValidation, "all threshold limits must be non-zero")
	}
	if t.BasicLimit > t.EnhancedLimit || t.EnhancedLimit > t.InstitutionalLimit {
		return dErrors.New(dErrors.CodeValidation, "tier limits must be non-decreasing from basic to institutional")
	}
	return nil
}

// TierLimit resolves the per-deal limit for a KYC tier. An absent or unknown
// tier gets a zero limit, which fails every non-zero amount.
func (t Thresholds) TierLimit(tier domain.Tier) uint64 {
	switch tier {
	case domain.TierBasic:
		return t.BasicLimit
	case domain.TierEnhanced:
		return t.EnhancedLimit
	case domain.TierInstitutional:
		return t.InstitutionalLimit
	default:
		return 0
	}
}

// CheckRequest carries the inputs of a single compliance evaluation.
type CheckRequest struct {
	DealID       domain.DealID
	Athlete      domain.EntityID
	Brand        domain.EntityID
	Amount       uint64
	Jurisdiction domain.Jurisdiction
}

func (r CheckRequest) Validate() error {
	if r.DealID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "deal id is required")
	}
	if r.Athlete.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "athlete id is required")
	}
	if r.Brand.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "brand id is required")
	}
	if _, err := domain.ParseJurisdiction(r.Jurisdiction.String()); err != nil {
		return err
	}
	return nil
}

// CheckResult is the full evaluation breakdown. Every field is populated even
// when an earlier rule already failed, so the audit record shows the complete
// picture. Once persisted against a deal it is immutable.
type CheckResult struct {
	DealID                domain.DealID `json:"deal_id"`
	Approved              bool          `json:"approved"`
	SanctionsClear        bool          `json:"sanctions_clear"`
	JurisdictionCompliant bool          `json:"jurisdiction_compliant"`
	KYCPassed             bool          `json:"kyc_passed"`
	DailyOK               bool          `json:"daily_ok"`
	MonthlyOK             bool          `json:"monthly_ok"`
	Reason                string        `json:"reason"`
	EvaluatedAt           time.Time     `json:"evaluated_at"`
}
