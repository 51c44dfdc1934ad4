package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nilclear/pkg/domain-errors"
)

// TestValidateSplits pins the structural split invariant: non-empty, unique
// beneficiaries, basis points summing to exactly 10000. Deals violating it
// never reach compliance evaluation, so this is enforced nowhere else.
func TestValidateSplits(t *testing.T) {
	entity := func(b byte) EntityID {
		var id EntityID
		id[19] = b
		return id
	}

	t.Run("accepts a split summing to 10000", func(t *testing.T) {
		require.NoError(t, ValidateSplits([]Split{
			{Beneficiary: entity(1), BPS: 7000},
			{Beneficiary: entity(2), BPS: 2000},
			{Beneficiary: entity(3), BPS: 1000},
		}))
	})

	t.Run("accepts a single full-share beneficiary", func(t *testing.T) {
		require.NoError(t, ValidateSplits([]Split{
			{Beneficiary: entity(1), BPS: TotalBPS},
		}))
	})

	t.Run("rejects empty splits", func(t *testing.T) {
		err := ValidateSplits(nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidSplit))
	})

	t.Run("rejects under and over allocation", func(t *testing.T) {
		under := ValidateSplits([]Split{{Beneficiary: entity(1), BPS: 9999}})
		assert.True(t, dErrors.HasCode(under, dErrors.CodeInvalidSplit))

		over := ValidateSplits([]Split{{Beneficiary: entity(1), BPS: 10001}})
		assert.True(t, dErrors.HasCode(over, dErrors.CodeInvalidSplit))
	})

	t.Run("rejects duplicate beneficiaries even when the sum is right", func(t *testing.T) {
		err := ValidateSplits([]Split{
			{Beneficiary: entity(1), BPS: 5000},
			{Beneficiary: entity(1), BPS: 5000},
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidSplit))
	})

	t.Run("rejects zero beneficiaries", func(t *testing.T) {
		err := ValidateSplits([]Split{{BPS: TotalBPS}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidSplit))
	})

	t.Run("sum check does not overflow uint32 accumulation", func(t *testing.T) {
		// Two max-uint32 shares wrap to a small number in 32 bits; the
		// validator accumulates in 64 bits so this must still fail.
		err := ValidateSplits([]Split{
			{Beneficiary: entity(1), BPS: 1<<32 - 1},
			{Beneficiary: entity(2), BPS: 1<<32 - 1},
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidSplit))
	})
}

func TestParseJurisdiction(t *testing.T) {
	cases := []struct {
		input   string
		wantErr bool
	}{
		{"US", false},
		{"GBR", false},
		{"", true},
		{"U", true},
		{"USAX", true},
		{"us", true},
		{"U1", true},
	}
	for _, tc := range cases {
		_, err := ParseJurisdiction(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		} else {
			assert.NoError(t, err, "input %q", tc.input)
		}
	}
}

func TestParseTier(t *testing.T) {
	for _, valid := range []string{"basic", "enhanced", "institutional"} {
		tier, err := ParseTier(valid)
		require.NoError(t, err)
		assert.True(t, tier.IsValid())
	}

	for _, invalid := range []string{"", "platinum", "BASIC"} {
		_, err := ParseTier(invalid)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "input %q", invalid)
	}

	assert.False(t, TierNone.IsValid())
}
