package domain

import dErrors "nilclear/pkg/domain-errors"

// Jurisdiction is an ISO 3166-style code naming where a party is regulated.
// Membership in the approved-jurisdiction set is enforced at KYC verification
// and again at compliance evaluation.
type Jurisdiction string

// ParseJurisdiction constructs a Jurisdiction from external input.
//
// Only the shape is validated here (2-3 uppercase letters); whether the
// jurisdiction is approved is policy, not parsing.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction cannot be empty")
	}
	if len(s) < 2 || len(s) > 3 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction must be a 2-3 letter code")
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction must be uppercase letters")
		}
	}
	return Jurisdiction(s), nil
}

func (j Jurisdiction) String() string {
	return string(j)
}
