package supplier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/id"
)

func strPtr(s string) *string { return &s }

func TestSupplier_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid registered supplier", func(t *testing.T) {
		s := NewSupplier(id.New(), "SUP-001", "MedPlus Distributors", TypeDistributor)
		s.GSTIN = strPtr("27AAPFU0939F1ZV")
		s.StateCode = "27"
		require.NoError(t, s.Validate(ctx))
	})

	t.Run("valid unregistered supplier", func(t *testing.T) {
		s := NewSupplier(id.New(), "SUP-002", "Local Vendor", TypeOther)
		require.NoError(t, s.Validate(ctx))
	})

	t.Run("malformed GSTIN", func(t *testing.T) {
		s := NewSupplier(id.New(), "SUP-003", "Bad GSTIN", TypeDistributor)
		s.GSTIN = strPtr("INVALID")
		require.Error(t, s.Validate(ctx))
	})

	t.Run("state code mismatch", func(t *testing.T) {
		s := NewSupplier(id.New(), "SUP-004", "Mismatch", TypeDistributor)
		s.GSTIN = strPtr("27AAPFU0939F1ZV")
		s.StateCode = "29"
		require.Error(t, s.Validate(ctx))
	})

	t.Run("invalid type", func(t *testing.T) {
		s := NewSupplier(id.New(), "SUP-005", "Odd Type", SupplierType("wholesaler"))
		require.Error(t, s.Validate(ctx))
	})

	t.Run("negative payment term", func(t *testing.T) {
		s := NewSupplier(id.New(), "SUP-006", "Bad Term", TypeStockist)
		s.PaymentTermDays = -30
		require.Error(t, s.Validate(ctx))
	})
}

func TestSupplier_EffectiveStateCode(t *testing.T) {
	s := NewSupplier(id.New(), "SUP-001", "MedPlus", TypeDistributor)
	s.StateCode = "29"
	assert.Equal(t, "29", s.EffectiveStateCode())

	// GSTIN wins over the stored state code.
	s.GSTIN = strPtr("27AAPFU0939F1ZV")
	assert.Equal(t, "27", s.EffectiveStateCode())
}

func TestSupplier_IsInterstate(t *testing.T) {
	s := NewSupplier(id.New(), "SUP-001", "MedPlus", TypeDistributor)
	s.GSTIN = strPtr("27AAPFU0939F1ZV")

	assert.True(t, s.IsInterstate("29"))
	assert.False(t, s.IsInterstate("27"))

	// Unknown state on either side defaults to intrastate.
	unregistered := NewSupplier(id.New(), "SUP-002", "Local", TypeOther)
	assert.False(t, unregistered.IsInterstate("29"))
	assert.False(t, s.IsInterstate(""))
}
