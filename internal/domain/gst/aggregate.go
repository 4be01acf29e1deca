package gst

import (
	"rxledger/internal/core/types"
)

// DocumentTotals is the sum of calculated lines for one document.
type DocumentTotals struct {
	Subtotal       types.Money `json:"subtotal"` // sum of base amounts
	TotalDiscount  types.Money `json:"totalDiscount"`
	TaxableAmount  types.Money `json:"taxableAmount"`
	TotalCGST      types.Money `json:"totalCgst"`
	TotalSGST      types.Money `json:"totalSgst"`
	TotalIGST      types.Money `json:"totalIgst"`
	TotalGSTAmount types.Money `json:"totalGstAmount"`
	GrandTotal     types.Money `json:"grandTotal"`
}

// Aggregate sums each monetary field across lines. Pure: no rounding is
// applied mid-sum; call Rounded() once at output.
func Aggregate(lines []CalculatedLine) DocumentTotals {
	t := DocumentTotals{
		Subtotal:       types.Zero(),
		TotalDiscount:  types.Zero(),
		TaxableAmount:  types.Zero(),
		TotalCGST:      types.Zero(),
		TotalSGST:      types.Zero(),
		TotalIGST:      types.Zero(),
		TotalGSTAmount: types.Zero(),
		GrandTotal:     types.Zero(),
	}

	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.BaseAmount)
		t.TotalDiscount = t.TotalDiscount.Add(l.DiscountAmount)
		t.TaxableAmount = t.TaxableAmount.Add(l.TaxableAmount)
		t.TotalCGST = t.TotalCGST.Add(l.CGSTAmount)
		t.TotalSGST = t.TotalSGST.Add(l.SGSTAmount)
		t.TotalIGST = t.TotalIGST.Add(l.IGSTAmount)
		t.TotalGSTAmount = t.TotalGSTAmount.Add(l.TotalGSTAmount)
		t.GrandTotal = t.GrandTotal.Add(l.LineTotal)
	}

	return t
}

// Rounded applies presentation rounding (2 decimal places) once.
func (t DocumentTotals) Rounded() DocumentTotals {
	return DocumentTotals{
		Subtotal:       types.RoundMoney(t.Subtotal),
		TotalDiscount:  types.RoundMoney(t.TotalDiscount),
		TaxableAmount:  types.RoundMoney(t.TaxableAmount),
		TotalCGST:      types.RoundMoney(t.TotalCGST),
		TotalSGST:      types.RoundMoney(t.TotalSGST),
		TotalIGST:      types.RoundMoney(t.TotalIGST),
		TotalGSTAmount: types.RoundMoney(t.TotalGSTAmount),
		GrandTotal:     types.RoundMoney(t.GrandTotal),
	}
}
