package httptransport

import (
	"strings"
	"time"

	"nilclear/internal/compliance"
	"nilclear/internal/deal"
	"nilclear/internal/kyc"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
)

const (
	maxDeliverables   = 32
	maxSplitCount     = 16
	maxReferenceChars = 256
)

// CreateDealRequest is the HTTP request body for POST /deals.
type CreateDealRequest struct {
	AthleteID    string         `json:"athlete_id"`
	BrandID      string         `json:"brand_id"`
	Amount       uint64         `json:"amount"`
	Currency     string         `json:"currency"`
	Jurisdiction string         `json:"jurisdiction"`
	Deliverables []string       `json:"deliverables"`
	TermsRef     string         `json:"terms_ref"`
	Splits       []SplitRequest `json:"splits"`

	// Parsed values (populated by Validate)
	parsed deal.CreateRequest
}

// SplitRequest is one beneficiary share of the deal amount.
type SplitRequest struct {
	Beneficiary string `json:"beneficiary"`
	BPS         uint32 `json:"bps"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateDealRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.Deliverables) > maxDeliverables {
		return dErrors.New(dErrors.CodeValidation, "too many deliverables")
	}
	if len(r.Splits) > maxSplitCount {
		return dErrors.New(dErrors.CodeValidation, "too many splits")
	}
	if len(r.TermsRef) > maxReferenceChars {
		return dErrors.New(dErrors.CodeValidation, "terms_ref is too long")
	}

	athlete, err := domain.ParseEntityID(r.AthleteID)
	if err != nil {
		return err
	}
	brand, err := domain.ParseEntityID(r.BrandID)
	if err != nil {
		return err
	}
	jurisdiction, err := domain.ParseJurisdiction(strings.ToUpper(strings.TrimSpace(r.Jurisdiction)))
	if err != nil {
		return err
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	}

	splits := make([]domain.Split, len(r.Splits))
	for i, s := range r.Splits {
		beneficiary, err := domain.ParseEntityID(s.Beneficiary)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidSplit, "invalid split beneficiary")
		}
		splits[i] = domain.Split{Beneficiary: beneficiary, BPS: s.BPS}
	}
	if err := domain.ValidateSplits(splits); err != nil {
		return err
	}

	r.parsed = deal.CreateRequest{
		Athlete:      athlete,
		Brand:        brand,
		Amount:       r.Amount,
		Currency:     r.Currency,
		Jurisdiction: jurisdiction,
		Deliverables: r.Deliverables,
		TermsRef:     r.TermsRef,
		Splits:       splits,
	}
	return nil
}

// Parsed returns the validated domain request.
func (r *CreateDealRequest) Parsed() deal.CreateRequest {
	return r.parsed
}

// CancelDealRequest is the HTTP request body for POST /deals/{id}/cancel.
type CancelDealRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelDealRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if len(r.Reason) > maxReferenceChars {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}
	return nil
}

// TokenRequest is the HTTP request body for POST /platforms/token.
type TokenRequest struct {
	PlatformID string `json:"platform_id"`
	Secret     string `json:"secret"`

	parsedPlatform domain.EntityID
}

func (r *TokenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	platform, err := domain.ParseEntityID(r.PlatformID)
	if err != nil {
		return err
	}
	if r.Secret == "" {
		return dErrors.New(dErrors.CodeValidation, "secret is required")
	}
	r.parsedPlatform = platform
	return nil
}

func (r *TokenRequest) ParsedPlatform() domain.EntityID {
	return r.parsedPlatform
}

// RegisterPlatformRequest is the HTTP request body for POST /admin/platforms.
type RegisterPlatformRequest struct {
	PlatformID string `json:"platform_id"`
	Name       string `json:"name"`

	parsedPlatform domain.EntityID
}

func (r *RegisterPlatformRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	platform, err := domain.ParseEntityID(r.PlatformID)
	if err != nil {
		return err
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	r.parsedPlatform = platform
	return nil
}

func (r *RegisterPlatformRequest) ParsedPlatform() domain.EntityID {
	return r.parsedPlatform
}

// ListSanctionRequest is the HTTP request body for POST /admin/sanctions.
type ListSanctionRequest struct {
	EntityID     string `json:"entity_id"`
	ListName     string `json:"list_name"`
	Reason       string `json:"reason"`
	EvidenceHash string `json:"evidence_hash"`

	parsedEntity domain.EntityID
}

func (r *ListSanctionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	entity, err := domain.ParseEntityID(r.EntityID)
	if err != nil {
		return err
	}
	r.ListName = strings.TrimSpace(r.ListName)
	if r.ListName == "" {
		return dErrors.New(dErrors.CodeValidation, "list_name is required")
	}
	r.parsedEntity = entity
	return nil
}

func (r *ListSanctionRequest) ParsedEntity() domain.EntityID {
	return r.parsedEntity
}

// VerifyKYCRequest is the HTTP request body for POST /admin/kyc.
type VerifyKYCRequest struct {
	EntityID     string    `json:"entity_id"`
	Tier         string    `json:"tier"`
	Jurisdiction string    `json:"jurisdiction"`
	DocumentHash string    `json:"document_hash"`
	ExpiresAt    time.Time `json:"expires_at"`

	parsed kyc.VerifyRequest
}

func (r *VerifyKYCRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	entity, err := domain.ParseEntityID(r.EntityID)
	if err != nil {
		return err
	}
	tier, err := domain.ParseTier(r.Tier)
	if err != nil {
		return err
	}
	jurisdiction, err := domain.ParseJurisdiction(strings.ToUpper(strings.TrimSpace(r.Jurisdiction)))
	if err != nil {
		return err
	}
	if r.ExpiresAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "expires_at is required")
	}
	r.parsed = kyc.VerifyRequest{
		Entity:       entity,
		Tier:         tier,
		Jurisdiction: jurisdiction,
		DocumentHash: r.DocumentHash,
		ExpiresAt:    r.ExpiresAt,
	}
	return nil
}

func (r *VerifyKYCRequest) Parsed() kyc.VerifyRequest {
	return r.parsed
}

// UpdateThresholdsRequest is the HTTP request body for PUT /admin/thresholds.
type UpdateThresholdsRequest struct {
	BasicLimit         uint64 `json:"basic_limit"`
	EnhancedLimit      uint64 `json:"enhanced_limit"`
	InstitutionalLimit uint64 `json:"institutional_limit"`
	DailyLimit         uint64 `json:"daily_limit"`
	MonthlyLimit       uint64 `json:"monthly_limit"`
}

func (r *UpdateThresholdsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.Thresholds().Validate()
}

func (r *UpdateThresholdsRequest) Thresholds() compliance.Thresholds {
	return compliance.Thresholds{
		BasicLimit:         r.BasicLimit,
		EnhancedLimit:      r.EnhancedLimit,
		InstitutionalLimit: r.InstitutionalLimit,
		DailyLimit:         r.DailyLimit,
		MonthlyLimit:       r.MonthlyLimit,
	}
}

// DepositRequest is the HTTP request body for POST /vault/{owner}/deposit.
type DepositRequest struct {
	Amount uint64 `json:"amount"`
}

func (r *DepositRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	return nil
}

// EmergencyWithdrawRequest is the HTTP request body for
// POST /vault/{owner}/emergency-withdraw.
type EmergencyWithdrawRequest struct {
	CallerID string `json:"caller_id"`

	parsedCaller domain.EntityID
}

func (r *EmergencyWithdrawRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	caller, err := domain.ParseEntityID(r.CallerID)
	if err != nil {
		return err
	}
	r.parsedCaller = caller
	return nil
}

func (r *EmergencyWithdrawRequest) ParsedCaller() domain.EntityID {
	return r.parsedCaller
}
