package credit_note

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/ledger"
)

func newTestCreditNote(reason Reason, amount float64) *CreditNote {
	cn := NewCreditNote(id.New(), id.New(), id.New(), reason, types.NewMoney(amount))
	cn.CurrencyID = id.New()
	return cn
}

func creditMapping(hospitalID id.ID) *ledger.AccountMapping {
	return ledger.NewAccountMapping(hospitalID).
		Bind(ledger.RoleAccountsPayable, id.New()).
		Bind(ledger.RoleCreditNote, id.New())
}

func TestCreditNote_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		cn := newTestCreditNote(ReasonRateDifference, 500)
		require.NoError(t, cn.Validate(ctx))
	})

	t.Run("zero amount", func(t *testing.T) {
		cn := newTestCreditNote(ReasonRateDifference, 0)
		require.Error(t, cn.Validate(ctx))
	})

	t.Run("invalid reason", func(t *testing.T) {
		cn := newTestCreditNote(Reason("discount"), 500)
		require.Error(t, cn.Validate(ctx))
	})

	t.Run("return line with zero quantity", func(t *testing.T) {
		cn := newTestCreditNote(ReasonReturn, 500)
		cn.AddReturnLine(id.New(), 0)
		require.Error(t, cn.Validate(ctx))
	})

	t.Run("payment link", func(t *testing.T) {
		cn := newTestCreditNote(ReasonScheme, 500)
		paymentID := id.New()
		cn.PaymentID = &paymentID
		require.NoError(t, cn.Validate(ctx))
	})

	t.Run("invoice and payment links are exclusive", func(t *testing.T) {
		cn := newTestCreditNote(ReasonScheme, 500)
		invoiceID := id.New()
		paymentID := id.New()
		cn.InvoiceID = &invoiceID
		cn.PaymentID = &paymentID

		err := cn.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not both")
	})
}

func TestCreditNote_HasStockEffect(t *testing.T) {
	cn := newTestCreditNote(ReasonRateDifference, 500)
	assert.False(t, cn.HasStockEffect())

	cn = newTestCreditNote(ReasonReturn, 500)
	assert.False(t, cn.HasStockEffect(), "no lines, no stock effect")

	cn.AddReturnLine(id.New(), types.NewQuantityFromInt(5))
	assert.True(t, cn.HasStockEffect())

	// Scheme credits never move stock even with lines attached.
	cn = newTestCreditNote(ReasonScheme, 500)
	cn.AddReturnLine(id.New(), types.NewQuantityFromInt(5))
	assert.False(t, cn.HasStockEffect())
}

func TestCreditNote_GenerateMovements(t *testing.T) {
	ctx := context.Background()

	t.Run("rate difference is ledger only", func(t *testing.T) {
		cn := newTestCreditNote(ReasonRateDifference, 500)
		cn.WithAccounts(creditMapping(cn.HospitalID))

		movements, err := cn.GenerateMovements(ctx)
		require.NoError(t, err)
		require.NotNil(t, movements.Ledger)
		assert.Equal(t, ledger.EventCreditNote, movements.Ledger.EventType)
		assert.True(t, movements.Ledger.TotalDebit.Equal(types.NewMoney(500)))
		assert.Empty(t, movements.StockIssues)
	})

	t.Run("expiry return issues stock", func(t *testing.T) {
		cn := newTestCreditNote(ReasonExpiry, 1200)
		medicineID := id.New()
		cn.AddReturnLine(medicineID, types.NewQuantityFromInt(10))
		cn.WithAccounts(creditMapping(cn.HospitalID))

		movements, err := cn.GenerateMovements(ctx)
		require.NoError(t, err)
		require.Len(t, movements.StockIssues, 1)
		assert.Equal(t, medicineID, movements.StockIssues[0].MedicineID)
		assert.Equal(t, types.NewQuantityFromInt(10), movements.StockIssues[0].Quantity)
	})

	t.Run("without mapping", func(t *testing.T) {
		cn := newTestCreditNote(ReasonReturn, 500)
		_, err := cn.GenerateMovements(ctx)
		require.Error(t, err)
	})
}
