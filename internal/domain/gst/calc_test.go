package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/types"
)

func line(qty float64, rate string, gstRate, discount float64, free, interstate bool) LineInput {
	return LineInput{
		Quantity:        types.NewQuantityFromFloat64(qty),
		UnitRate:        types.MustMoney(rate),
		GSTRate:         types.NewPercent(gstRate),
		DiscountPercent: types.NewPercent(discount),
		IsFree:          free,
		IsInterstate:    interstate,
	}
}

func TestCalculate_Intrastate(t *testing.T) {
	// qty=10, rate=100, gst=12%, no discount
	got, err := Calculate(line(10, "100", 12, 0, false, false))
	require.NoError(t, err)

	assert.True(t, got.TaxableAmount.Equal(types.MustMoney("1000")), "taxable: %s", got.TaxableAmount)
	assert.True(t, got.CGSTAmount.Equal(types.MustMoney("60")), "cgst: %s", got.CGSTAmount)
	assert.True(t, got.SGSTAmount.Equal(types.MustMoney("60")), "sgst: %s", got.SGSTAmount)
	assert.True(t, got.IGSTAmount.IsZero())
	assert.True(t, got.LineTotal.Equal(types.MustMoney("1120")), "total: %s", got.LineTotal)
}

func TestCalculate_Interstate(t *testing.T) {
	got, err := Calculate(line(10, "100", 12, 0, false, true))
	require.NoError(t, err)

	assert.True(t, got.CGSTAmount.IsZero())
	assert.True(t, got.SGSTAmount.IsZero())
	assert.True(t, got.IGSTAmount.Equal(types.MustMoney("120")), "igst: %s", got.IGSTAmount)
	assert.True(t, got.LineTotal.Equal(types.MustMoney("1120")), "total: %s", got.LineTotal)
}

func TestCalculate_DiscountPreTax(t *testing.T) {
	// 10 * 100 = 1000, 10% discount = 100, taxable 900, 12% GST = 108
	got, err := Calculate(line(10, "100", 12, 10, false, false))
	require.NoError(t, err)

	assert.True(t, got.DiscountAmount.Equal(types.MustMoney("100")))
	assert.True(t, got.TaxableAmount.Equal(types.MustMoney("900")))
	assert.True(t, got.TotalGSTAmount.Equal(types.MustMoney("108")))
	assert.True(t, got.LineTotal.Equal(types.MustMoney("1008")))
}

func TestCalculate_FreeItem(t *testing.T) {
	// Free items override the rate and discount; any rate input is legal.
	got, err := Calculate(line(5, "-999", 12, 50, true, false))
	require.NoError(t, err)

	assert.True(t, got.BaseAmount.IsZero())
	assert.True(t, got.DiscountAmount.IsZero())
	assert.True(t, got.TaxableAmount.IsZero())
	assert.True(t, got.LineTotal.IsZero())
}

func TestCalculate_Invariants(t *testing.T) {
	cases := []LineInput{
		line(10, "100", 12, 0, false, false),
		line(3, "33.33", 18, 5, false, false),
		line(7, "19.99", 5, 12.5, false, true),
		line(1, "0.01", 28, 100, false, false),
		line(2, "45", 0, 0, false, true),
	}

	for _, in := range cases {
		got, err := Calculate(in)
		require.NoError(t, err)

		// line_total == taxable + gst
		assert.True(t, got.LineTotal.Equal(got.TaxableAmount.Add(got.TotalGSTAmount)))
		// taxable + discount == base
		assert.True(t, got.BaseAmount.Equal(got.TaxableAmount.Add(got.DiscountAmount)))

		if in.IsInterstate {
			assert.True(t, got.CGSTAmount.IsZero())
			assert.True(t, got.SGSTAmount.IsZero())
		} else {
			assert.True(t, got.IGSTAmount.IsZero())
			assert.True(t, got.CGSTAmount.Equal(got.SGSTAmount))
		}
	}
}

func TestCalculate_ConversionFactorDisplayOnly(t *testing.T) {
	in := line(10, "100", 12, 0, false, false)
	in.ConversionFactor = types.MustMoney("10") // 10 units per pack

	got, err := Calculate(in)
	require.NoError(t, err)

	// Tax math unchanged by the conversion factor.
	assert.True(t, got.LineTotal.Equal(types.MustMoney("1120")))
	// Display price is per unit.
	assert.True(t, got.PerUnitRate.Equal(types.MustMoney("10")))
}

func TestCalculate_Validation(t *testing.T) {
	t.Run("negative_gst_rate", func(t *testing.T) {
		_, err := Calculate(line(10, "100", -1, 0, false, false))
		require.Error(t, err)
	})

	t.Run("discount_over_100", func(t *testing.T) {
		_, err := Calculate(line(10, "100", 12, 101, false, false))
		require.Error(t, err)
	})

	t.Run("zero_quantity_non_free", func(t *testing.T) {
		_, err := Calculate(line(0, "100", 12, 0, false, false))
		require.Error(t, err)
	})

	t.Run("zero_quantity_free_ok", func(t *testing.T) {
		_, err := Calculate(line(0, "100", 12, 0, true, false))
		require.NoError(t, err)
	})
}

func TestCalculatedLine_Negated(t *testing.T) {
	got, err := Calculate(line(10, "100", 12, 0, false, false))
	require.NoError(t, err)

	neg := got.Negated()
	assert.True(t, neg.LineTotal.Equal(got.LineTotal.Neg()))
	assert.True(t, neg.TaxableAmount.Equal(got.TaxableAmount.Neg()))
	// Magnitudes preserved
	assert.True(t, neg.LineTotal.Abs().Equal(got.LineTotal.Abs()))
}

func TestAggregate(t *testing.T) {
	l1, err := Calculate(line(10, "100", 12, 0, false, false))
	require.NoError(t, err)
	l2, err := Calculate(line(5, "200", 18, 10, false, true))
	require.NoError(t, err)

	totals := Aggregate([]CalculatedLine{l1, l2})

	// l2: base 1000, discount 100, taxable 900, igst 162, total 1062
	assert.True(t, totals.Subtotal.Equal(types.MustMoney("2000")))
	assert.True(t, totals.TaxableAmount.Equal(types.MustMoney("1900")))
	assert.True(t, totals.TotalIGST.Equal(types.MustMoney("162")))
	assert.True(t, totals.GrandTotal.Equal(types.MustMoney("2182")))

	// document total equals sum of line totals
	assert.True(t, totals.GrandTotal.Equal(l1.LineTotal.Add(l2.LineTotal)))
}

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil)
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, totals.Subtotal.IsZero())
}

func TestAggregate_RoundingOnceAtOutput(t *testing.T) {
	// Three lines whose unrounded thirds only reconcile when rounding
	// happens after summation.
	var lines []CalculatedLine
	for i := 0; i < 3; i++ {
		l, err := Calculate(line(1, "33.333333", 12, 0, false, false))
		require.NoError(t, err)
		lines = append(lines, l)
	}

	totals := Aggregate(lines).Rounded()
	assert.True(t, totals.Subtotal.Equal(types.MustMoney("100")), "subtotal: %s", totals.Subtotal)
}
