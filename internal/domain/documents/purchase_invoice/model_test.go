package purchase_invoice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/ledger"
)

func newTestInvoice() *PurchaseInvoice {
	inv := NewPurchaseInvoice(id.New(), id.New(), id.New())
	inv.CurrencyID = id.New()
	inv.SupplierInvoiceNumber = "SUP-INV-001"
	return inv
}

func addTestLine(t *testing.T, inv *PurchaseInvoice, qty float64, rate float64, gstRate float64) {
	t.Helper()
	err := inv.AddLine(LineRequest{
		MedicineID:  id.New(),
		BatchNumber: "B-2026-01",
		ExpiryDate:  time.Now().AddDate(1, 0, 0),
		Quantity:    types.NewQuantityFromFloat64(qty),
		UnitRate:    types.NewMoney(rate),
		GSTRate:     types.NewPercent(gstRate),
	})
	require.NoError(t, err)
}

func TestPurchaseInvoice_AddLine_Totals(t *testing.T) {
	inv := newTestInvoice()

	addTestLine(t, inv, 10, 100, 12)
	addTestLine(t, inv, 5, 200, 5)

	// Line 1: base 1000, CGST 60, SGST 60, total 1120
	// Line 2: base 1000, CGST 25, SGST 25, total 1050
	assert.True(t, inv.Subtotal.Equal(types.NewMoney(2000)), "subtotal: %s", inv.Subtotal)
	assert.True(t, inv.TotalCGST.Equal(types.NewMoney(85)), "cgst: %s", inv.TotalCGST)
	assert.True(t, inv.TotalSGST.Equal(types.NewMoney(85)), "sgst: %s", inv.TotalSGST)
	assert.True(t, inv.TotalIGST.IsZero())
	assert.True(t, inv.GrandTotal.Equal(types.NewMoney(2170)), "grand: %s", inv.GrandTotal)
}

func TestPurchaseInvoice_AddLine_FreeLine(t *testing.T) {
	inv := newTestInvoice()

	t.Run("explicit flag zeroes the amounts", func(t *testing.T) {
		err := inv.AddLine(LineRequest{
			MedicineID:      id.New(),
			BatchNumber:     "B-SCHEME-01",
			ExpiryDate:      time.Now().AddDate(1, 0, 0),
			Quantity:        types.NewQuantityFromInt(10),
			UnitRate:        types.NewMoney(100),
			DiscountPercent: types.NewPercent(5),
			GSTRate:         types.NewPercent(12),
			IsFree:          true,
		})
		require.NoError(t, err)

		line := inv.Lines[len(inv.Lines)-1]
		assert.True(t, line.IsFree)
		assert.True(t, line.BaseAmount.IsZero(), "base: %s", line.BaseAmount)
		assert.True(t, line.LineTotal.IsZero(), "total: %s", line.LineTotal)
		assert.True(t, inv.GrandTotal.IsZero())
	})

	t.Run("free quantity without billed quantity", func(t *testing.T) {
		err := inv.AddLine(LineRequest{
			MedicineID:   id.New(),
			BatchNumber:  "B-SCHEME-02",
			ExpiryDate:   time.Now().AddDate(1, 0, 0),
			FreeQuantity: types.NewQuantityFromInt(24),
			GSTRate:      types.NewPercent(12),
		})
		require.NoError(t, err)

		line := inv.Lines[len(inv.Lines)-1]
		assert.True(t, line.IsFree)
		assert.True(t, line.LineTotal.IsZero())
	})
}

func TestPurchaseInvoice_AddLine_Interstate(t *testing.T) {
	inv := newTestInvoice()
	inv.IsInterstate = true

	addTestLine(t, inv, 10, 100, 18)

	assert.True(t, inv.TotalCGST.IsZero())
	assert.True(t, inv.TotalSGST.IsZero())
	assert.True(t, inv.TotalIGST.Equal(types.NewMoney(180)), "igst: %s", inv.TotalIGST)
	assert.True(t, inv.GrandTotal.Equal(types.NewMoney(1180)))
}

func TestPurchaseInvoice_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		inv := newTestInvoice()
		addTestLine(t, inv, 10, 100, 12)
		require.NoError(t, inv.Validate(ctx))
	})

	t.Run("missing supplier invoice number", func(t *testing.T) {
		inv := newTestInvoice()
		inv.SupplierInvoiceNumber = ""
		addTestLine(t, inv, 10, 100, 12)
		require.Error(t, inv.Validate(ctx))
	})

	t.Run("no lines", func(t *testing.T) {
		inv := newTestInvoice()
		require.Error(t, inv.Validate(ctx))
	})

	t.Run("missing batch number", func(t *testing.T) {
		inv := newTestInvoice()
		addTestLine(t, inv, 10, 100, 12)
		inv.Lines[0].BatchNumber = ""
		require.Error(t, inv.Validate(ctx))
	})

	t.Run("free quantity only is allowed", func(t *testing.T) {
		inv := newTestInvoice()
		err := inv.AddLine(LineRequest{
			MedicineID:   id.New(),
			BatchNumber:  "B-FREE",
			ExpiryDate:   time.Now().AddDate(1, 0, 0),
			FreeQuantity: types.NewQuantityFromInt(10),
			GSTRate:      types.NewPercent(12),
		})
		require.NoError(t, err)
		require.NoError(t, inv.Validate(ctx))
	})
}

func TestPurchaseInvoice_CanPost_ExpiredBatch(t *testing.T) {
	ctx := context.Background()
	inv := newTestInvoice()

	err := inv.AddLine(LineRequest{
		MedicineID:  id.New(),
		BatchNumber: "B-EXPIRED",
		ExpiryDate:  inv.Date.AddDate(0, -1, 0),
		Quantity:    types.NewQuantityFromInt(10),
		UnitRate:    types.NewMoney(50),
		GSTRate:     types.NewPercent(12),
	})
	require.NoError(t, err)

	err = inv.CanPost(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func testMapping(hospitalID id.ID) *ledger.AccountMapping {
	return ledger.NewAccountMapping(hospitalID).
		Bind(ledger.RoleAccountsPayable, id.New()).
		Bind(ledger.RolePurchaseExpense, id.New()).
		Bind(ledger.RoleCGSTInput, id.New()).
		Bind(ledger.RoleSGSTInput, id.New()).
		Bind(ledger.RoleIGSTInput, id.New())
}

func TestPurchaseInvoice_GenerateMovements(t *testing.T) {
	ctx := context.Background()
	inv := newTestInvoice()
	addTestLine(t, inv, 10, 100, 12)

	t.Run("without mapping", func(t *testing.T) {
		_, err := inv.GenerateMovements(ctx)
		require.Error(t, err)
	})

	inv.WithAccounts(testMapping(inv.HospitalID))

	movements, err := inv.GenerateMovements(ctx)
	require.NoError(t, err)
	require.NotNil(t, movements.Ledger)

	// Balanced transaction: debits (expense + taxes) equal the AP credit.
	assert.True(t, movements.Ledger.TotalDebit.Equal(movements.Ledger.TotalCredit))
	assert.True(t, movements.Ledger.TotalCredit.Equal(types.NewMoney(1120)),
		"ap credit: %s", movements.Ledger.TotalCredit)

	require.Len(t, movements.StockReceipts, 1)
	assert.Equal(t, types.NewQuantityFromInt(10), movements.StockReceipts[0].Quantity)
	assert.Empty(t, movements.StockIssues)
}

func TestPurchaseInvoice_GenerateMovements_FreeStock(t *testing.T) {
	ctx := context.Background()
	inv := newTestInvoice()

	err := inv.AddLine(LineRequest{
		MedicineID:   id.New(),
		BatchNumber:  "B-SCHEME",
		ExpiryDate:   time.Now().AddDate(1, 0, 0),
		Quantity:     types.NewQuantityFromInt(10),
		FreeQuantity: types.NewQuantityFromInt(2),
		UnitRate:     types.NewMoney(100),
		GSTRate:      types.NewPercent(12),
	})
	require.NoError(t, err)
	inv.WithAccounts(testMapping(inv.HospitalID))

	movements, err := inv.GenerateMovements(ctx)
	require.NoError(t, err)

	// Free units enter the lot but are never billed.
	require.Len(t, movements.StockReceipts, 1)
	assert.Equal(t, types.NewQuantityFromInt(12), movements.StockReceipts[0].Quantity)
	assert.True(t, movements.Ledger.TotalCredit.Equal(types.NewMoney(1120)))
}
