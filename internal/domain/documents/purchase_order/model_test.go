package purchase_order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

func newTestOrder() *PurchaseOrder {
	return NewPurchaseOrder(id.New(), id.New(), id.New())
}

func TestPurchaseOrder_AddLine_Totals(t *testing.T) {
	po := newTestOrder()

	err := po.AddLine(LineRequest{
		MedicineID: id.New(),
		Quantity:   types.NewQuantityFromInt(10),
		UnitRate:   types.NewMoney(100),
		GSTRate:    types.NewPercent(12),
	})
	require.NoError(t, err)

	// base 1000, GST 120
	assert.True(t, po.TaxableAmount.Equal(types.NewMoney(1000)), "taxable: %s", po.TaxableAmount)
	assert.True(t, po.TotalGST.Equal(types.NewMoney(120)), "gst: %s", po.TotalGST)
	assert.True(t, po.GrandTotal.Equal(types.NewMoney(1120)), "grand: %s", po.GrandTotal)
}

func TestPurchaseOrder_AddLine_Discount(t *testing.T) {
	po := newTestOrder()

	err := po.AddLine(LineRequest{
		MedicineID:      id.New(),
		Quantity:        types.NewQuantityFromInt(10),
		UnitRate:        types.NewMoney(100),
		DiscountPercent: types.NewPercent(10),
		GSTRate:         types.NewPercent(12),
	})
	require.NoError(t, err)

	// base 1000, discount 100, taxable 900, GST 108
	assert.True(t, po.TaxableAmount.Equal(types.NewMoney(900)), "taxable: %s", po.TaxableAmount)
	assert.True(t, po.TotalGST.Equal(types.NewMoney(108)), "gst: %s", po.TotalGST)
	assert.True(t, po.GrandTotal.Equal(types.NewMoney(1008)), "grand: %s", po.GrandTotal)
}

func TestPurchaseOrder_AddLine_FreeLine(t *testing.T) {
	po := newTestOrder()

	err := po.AddLine(LineRequest{
		MedicineID: id.New(),
		Quantity:   types.NewQuantityFromInt(5),
		UnitRate:   types.NewMoney(80),
		GSTRate:    types.NewPercent(12),
		IsFree:     true,
	})
	require.NoError(t, err)

	line := po.Lines[0]
	assert.True(t, line.IsFree)
	assert.True(t, line.LineTotal.IsZero(), "total: %s", line.LineTotal)
	assert.True(t, po.GrandTotal.IsZero())
}

func TestPurchaseOrder_Workflow(t *testing.T) {
	po := newTestOrder()

	require.NoError(t, po.MarkReceived())
	assert.Equal(t, StatusReceived, po.Status)

	// Received orders can be neither received again nor cancelled.
	require.Error(t, po.MarkReceived())
	require.Error(t, po.Cancel())
}

func TestPurchaseOrder_Validate(t *testing.T) {
	ctx := context.Background()

	po := newTestOrder()
	require.Error(t, po.Validate(ctx), "no lines")

	err := po.AddLine(LineRequest{
		MedicineID: id.New(),
		Quantity:   types.NewQuantityFromInt(1),
		UnitRate:   types.NewMoney(50),
		GSTRate:    types.NewPercent(5),
	})
	require.NoError(t, err)
	require.NoError(t, po.Validate(ctx))
}
