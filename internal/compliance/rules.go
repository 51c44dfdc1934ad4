package compliance

import (
	"time"

	"nilclear/internal/kyc"
	"nilclear/pkg/domain"
)

// Evidence is everything a single evaluation needs, gathered up front so the
// rule pass itself is pure and has no I/O.
type Evidence struct {
	AthleteClear          bool
	BrandClear            bool
	JurisdictionCompliant bool
	KYC                   *kyc.Record
	DayTotal              uint64
	MonthTotal            uint64
}

// Evaluate applies the rule chain to gathered evidence. Every field of the
// result is populated regardless of which rule failed; Reason names the first
// failure in rule order.
func Evaluate(req CheckRequest, ev Evidence, th Thresholds, at time.Time) CheckResult {
	result := CheckResult{
		DealID:                req.DealID,
		SanctionsClear:        ev.AthleteClear && ev.BrandClear,
		JurisdictionCompliant: ev.JurisdictionCompliant,
		EvaluatedAt:           at,
	}

	tier := domain.TierNone
	if ev.KYC != nil {
		tier = ev.KYC.Tier
	}
	tierLimit := th.TierLimit(tier)
	result.KYCPassed = req.Amount <= tierLimit

	result.DailyOK = ev.DayTotal+req.Amount <= th.DailyLimit
	result.MonthlyOK = ev.MonthTotal+req.Amount <= th.MonthlyLimit

	result.Approved = result.SanctionsClear &&
		result.JurisdictionCompliant &&
		result.KYCPassed &&
		result.DailyOK &&
		result.MonthlyOK

	switch {
	case result.Approved:
		result.Reason = ReasonApproved
	case !result.SanctionsClear:
		result.Reason = ReasonSanctionsHit
	case !result.JurisdictionCompliant:
		result.Reason = ReasonJurisdictionNotApproved
	case !result.KYCPassed:
		result.Reason = ReasonTierLimitExceeded
	case !result.DailyOK:
		result.Reason = ReasonDailyLimitExceeded
	default:
		result.Reason = ReasonMonthlyLimitExceeded
	}
	return result
}
