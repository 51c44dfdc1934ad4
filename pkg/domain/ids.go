// Package domain holds typed identifiers and value objects shared across
// features. Construct values via the Parse helpers at trust boundaries;
// direct conversion bypasses validation.
package domain

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	dErrors "nilclear/pkg/domain-errors"
)

// EntityID is the fixed-width identifier used for athletes, brands, schools,
// collectives, and platforms. The canonical string form is "0x" followed by
// 40 hex digits.
type EntityID [20]byte

// ParseEntityID constructs an EntityID from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or zero.
func ParseEntityID(s string) (EntityID, error) {
	if s == "" {
		return EntityID{}, dErrors.New(dErrors.CodeInvalidInput, "entity id cannot be empty")
	}
	raw := strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(raw) != 40 {
		return EntityID{}, dErrors.New(dErrors.CodeInvalidInput, "entity id must be 20 bytes of hex")
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return EntityID{}, dErrors.New(dErrors.CodeInvalidInput, "entity id is not valid hex")
	}
	var id EntityID
	copy(id[:], b)
	if id.IsZero() {
		return EntityID{}, dErrors.New(dErrors.CodeInvalidInput, "entity id cannot be zero")
	}
	return id, nil
}

func (e EntityID) String() string {
	return "0x" + hex.EncodeToString(e[:])
}

func (e EntityID) IsZero() bool {
	return e == EntityID{}
}

// MarshalText renders the canonical 0x-prefixed form for JSON and logs.
func (e EntityID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EntityID) UnmarshalText(text []byte) error {
	id, err := ParseEntityID(string(text))
	if err != nil {
		return err
	}
	*e = id
	return nil
}

// DealID identifies a deal aggregate.
type DealID uuid.UUID

// NewDealID mints a fresh deal identifier.
func NewDealID() DealID {
	return DealID(uuid.New())
}

// ParseDealID constructs a DealID from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseDealID(s string) (DealID, error) {
	if s == "" {
		return DealID{}, dErrors.New(dErrors.CodeInvalidInput, "deal id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return DealID{}, dErrors.New(dErrors.CodeInvalidInput, "deal id must be a valid UUID")
	}
	if u == uuid.Nil {
		return DealID{}, dErrors.New(dErrors.CodeInvalidInput, "deal id cannot be the nil UUID")
	}
	return DealID(u), nil
}

func (d DealID) String() string {
	return uuid.UUID(d).String()
}

func (d DealID) IsNil() bool {
	return uuid.UUID(d) == uuid.Nil
}

func (d DealID) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DealID) UnmarshalText(text []byte) error {
	id, err := ParseDealID(string(text))
	if err != nil {
		return err
	}
	*d = id
	return nil
}
