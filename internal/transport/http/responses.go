package httptransport

import (
	"time"

	"nilclear/internal/compliance"
	"nilclear/internal/deal"
	"nilclear/internal/settlement"
)

// DealResponse is the HTTP representation of a deal.
type DealResponse struct {
	ID           string           `json:"id"`
	Athlete      string           `json:"athlete"`
	Brand        string           `json:"brand"`
	Platform     string           `json:"platform"`
	Amount       uint64           `json:"amount"`
	Currency     string           `json:"currency"`
	Jurisdiction string           `json:"jurisdiction"`
	Deliverables []string         `json:"deliverables"`
	TermsRef     string           `json:"terms_ref"`
	Splits       []SplitResponse  `json:"splits"`
	State        string           `json:"state"`
	Compliance   *CheckResponse   `json:"compliance,omitempty"`
	Payouts      []PayoutResponse `json:"payouts,omitempty"`
	CancelReason string           `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type SplitResponse struct {
	Beneficiary string `json:"beneficiary"`
	BPS         uint32 `json:"bps"`
}

type PayoutResponse struct {
	Beneficiary string `json:"beneficiary"`
	Amount      uint64 `json:"amount"`
}

// CheckResponse is the compliance breakdown portion of the response.
type CheckResponse struct {
	Approved              bool      `json:"approved"`
	SanctionsClear        bool      `json:"sanctions_clear"`
	JurisdictionCompliant bool      `json:"jurisdiction_compliant"`
	KYCPassed             bool      `json:"kyc_passed"`
	DailyOK               bool      `json:"daily_ok"`
	MonthlyOK             bool      `json:"monthly_ok"`
	Reason                string    `json:"reason"`
	EvaluatedAt           time.Time `json:"evaluated_at"`
}

// FromDeal converts a domain deal to its HTTP representation.
func FromDeal(d *deal.Deal) *DealResponse {
	resp := &DealResponse{
		ID:           d.ID.String(),
		Athlete:      d.Athlete.String(),
		Brand:        d.Brand.String(),
		Platform:     d.Platform.String(),
		Amount:       d.Amount,
		Currency:     d.Currency,
		Jurisdiction: d.Jurisdiction.String(),
		Deliverables: d.Deliverables,
		TermsRef:     d.TermsRef,
		Splits:       make([]SplitResponse, len(d.Splits)),
		State:        string(d.State),
		CancelReason: d.CancelReason,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for i, s := range d.Splits {
		resp.Splits[i] = SplitResponse{Beneficiary: s.Beneficiary.String(), BPS: s.BPS}
	}
	if d.Compliance != nil {
		resp.Compliance = FromCheckResult(*d.Compliance)
	}
	for _, p := range d.Payouts {
		resp.Payouts = append(resp.Payouts, FromPayout(p))
	}
	return resp
}

// FromCheckResult converts a compliance result to its HTTP representation.
func FromCheckResult(result compliance.CheckResult) *CheckResponse {
	return &CheckResponse{
		Approved:              result.Approved,
		SanctionsClear:        result.SanctionsClear,
		JurisdictionCompliant: result.JurisdictionCompliant,
		KYCPassed:             result.KYCPassed,
		DailyOK:               result.DailyOK,
		MonthlyOK:             result.MonthlyOK,
		Reason:                result.Reason,
		EvaluatedAt:           result.EvaluatedAt,
	}
}

func FromPayout(p settlement.Payout) PayoutResponse {
	return PayoutResponse{Beneficiary: p.Beneficiary.String(), Amount: p.Amount}
}

// VolumeResponse is the HTTP representation of an athlete's rolling totals.
type VolumeResponse struct {
	Athlete    string `json:"athlete"`
	DayTotal   uint64 `json:"day_total"`
	MonthTotal uint64 `json:"month_total"`
}

// BalanceResponse is the HTTP representation of a vault balance.
type BalanceResponse struct {
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance"`
}

// RegisterPlatformResponse returns the one-time plaintext secret.
type RegisterPlatformResponse struct {
	PlatformID string `json:"platform_id"`
	Name       string `json:"name"`
	Secret     string `json:"secret"`
}

// TokenResponse carries an issued platform JWT.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}
