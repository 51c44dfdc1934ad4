package domain

import dErrors "nilclear/pkg/domain-errors"

// Tier is the KYC verification level of an entity. Tiers gate the maximum
// single-deal amount an athlete may accept.
type Tier string

const (
	TierBasic         Tier = "basic"
	TierEnhanced      Tier = "enhanced"
	TierInstitutional Tier = "institutional"

	// TierNone marks an entity with no usable verification (absent or
	// expired record). It fails every tier limit by definition.
	TierNone Tier = ""
)

// validTiers is the single source of truth for supported tiers.
var validTiers = map[Tier]bool{
	TierBasic:         true,
	TierEnhanced:      true,
	TierInstitutional: true,
}

// ParseTier constructs a Tier from external input.
//
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseTier(s string) (Tier, error) {
	if s == "" {
		return TierNone, dErrors.New(dErrors.CodeInvalidInput, "tier cannot be empty")
	}
	t := Tier(s)
	if !t.IsValid() {
		return TierNone, dErrors.New(dErrors.CodeInvalidInput, "invalid tier")
	}
	return t, nil
}

// IsValid checks if the tier is one of the supported enum values.
func (t Tier) IsValid() bool {
	return validTiers[t]
}

func (t Tier) String() string {
	return string(t)
}
