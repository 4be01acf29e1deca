// Package gst computes Indian GST amounts for purchase document lines.
// All math runs on shopspring decimals without intermediate rounding;
// presentation rounding is applied once via Rounded().
package gst

import (
	"rxledger/internal/core/apperror"
	"rxledger/internal/core/types"
)

// LineInput captures one document line before tax calculation.
// UnitRate is the already-resolved per-unit price; ConversionFactor
// (units per pack) only derives the display price per pack unit and
// never changes the tax math.
type LineInput struct {
	Quantity        types.Quantity
	UnitRate        types.Money
	GSTRate         types.Percent
	DiscountPercent types.Percent
	IsFree          bool
	IsInterstate    bool

	// ConversionFactor is units per pack, >= 1. Zero means "not packed"
	// and is treated as 1.
	ConversionFactor types.Money
}

// CalculatedLine is the immutable result of the line calculation.
// All fields are unrounded; reversals flip signs via Negated().
type CalculatedLine struct {
	BaseAmount     types.Money `json:"baseAmount"`
	DiscountAmount types.Money `json:"discountAmount"`
	TaxableAmount  types.Money `json:"taxableAmount"`
	CGSTAmount     types.Money `json:"cgstAmount"`
	SGSTAmount     types.Money `json:"sgstAmount"`
	IGSTAmount     types.Money `json:"igstAmount"`
	TotalGSTAmount types.Money `json:"totalGstAmount"`
	LineTotal      types.Money `json:"lineTotal"`

	// PerUnitRate is the pack rate divided by the conversion factor,
	// for display only.
	PerUnitRate types.Money `json:"perUnitRate"`
}

// Calculate computes tax amounts for one line.
//
// Rules:
//   - free items force unit rate and discount to zero before any math
//   - discount applies pre-tax (base * discount% / 100)
//   - interstate supplies attract IGST on the full rate, intrastate
//     supplies split the rate evenly between CGST and SGST
func Calculate(in LineInput) (CalculatedLine, error) {
	if err := validate(in); err != nil {
		return CalculatedLine{}, err
	}

	rate := in.UnitRate
	discountPct := in.DiscountPercent
	if in.IsFree {
		rate = types.Zero()
		discountPct = types.Zero()
	}

	qty := in.Quantity.Decimal()
	baseAmount := qty.Mul(rate)
	discountAmount := types.ApplyPercent(baseAmount, discountPct)
	taxableAmount := baseAmount.Sub(discountAmount)

	var cgst, sgst, igst types.Money
	if in.IsInterstate {
		igst = types.ApplyPercent(taxableAmount, in.GSTRate)
		cgst = types.Zero()
		sgst = types.Zero()
	} else {
		half := in.GSTRate.Div(types.Two)
		cgst = types.ApplyPercent(taxableAmount, half)
		sgst = cgst
		igst = types.Zero()
	}

	totalGST := cgst.Add(sgst).Add(igst)

	perUnit := rate
	if in.ConversionFactor.GreaterThan(types.NewMoneyFromInt(1)) {
		perUnit = rate.Div(in.ConversionFactor)
	}

	return CalculatedLine{
		BaseAmount:     baseAmount,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxableAmount,
		CGSTAmount:     cgst,
		SGSTAmount:     sgst,
		IGSTAmount:     igst,
		TotalGSTAmount: totalGST,
		LineTotal:      taxableAmount.Add(totalGST),
		PerUnitRate:    perUnit,
	}, nil
}

func validate(in LineInput) error {
	if in.GSTRate.IsNegative() {
		return apperror.NewValidation("GST rate cannot be negative").
			WithDetail("field", "gstRate").
			WithDetail("value", in.GSTRate.String())
	}

	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(types.Hundred) {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent").
			WithDetail("value", in.DiscountPercent.String())
	}

	// Free items permit any quantity/rate input: the rate is overridden,
	// not validated.
	if !in.IsFree && !in.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", in.Quantity.String())
	}

	if in.ConversionFactor.IsNegative() {
		return apperror.NewValidation("conversion factor must be at least 1").
			WithDetail("field", "conversionFactor").
			WithDetail("value", in.ConversionFactor.String())
	}

	return nil
}

// Negated returns the line with every monetary sign flipped.
// Used when voiding a document: magnitudes stay intact for audit.
func (c CalculatedLine) Negated() CalculatedLine {
	return CalculatedLine{
		BaseAmount:     c.BaseAmount.Neg(),
		DiscountAmount: c.DiscountAmount.Neg(),
		TaxableAmount:  c.TaxableAmount.Neg(),
		CGSTAmount:     c.CGSTAmount.Neg(),
		SGSTAmount:     c.SGSTAmount.Neg(),
		IGSTAmount:     c.IGSTAmount.Neg(),
		TotalGSTAmount: c.TotalGSTAmount.Neg(),
		LineTotal:      c.LineTotal.Neg(),
		PerUnitRate:    c.PerUnitRate,
	}
}

// Rounded applies presentation rounding (2 decimal places) to every field.
func (c CalculatedLine) Rounded() CalculatedLine {
	return CalculatedLine{
		BaseAmount:     types.RoundMoney(c.BaseAmount),
		DiscountAmount: types.RoundMoney(c.DiscountAmount),
		TaxableAmount:  types.RoundMoney(c.TaxableAmount),
		CGSTAmount:     types.RoundMoney(c.CGSTAmount),
		SGSTAmount:     types.RoundMoney(c.SGSTAmount),
		IGSTAmount:     types.RoundMoney(c.IGSTAmount),
		TotalGSTAmount: types.RoundMoney(c.TotalGSTAmount),
		LineTotal:      types.RoundMoney(c.LineTotal),
		PerUnitRate:    types.RoundMoney(c.PerUnitRate),
	}
}
