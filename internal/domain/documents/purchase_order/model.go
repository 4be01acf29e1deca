// Package purchase_order provides the PurchaseOrder document.
// Orders capture intent to buy; they carry estimated amounts and have
// no ledger or stock effect.
package purchase_order

import (
	"context"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/gst"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusOpen      Status = "open"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// PurchaseOrder represents an order placed with a supplier.
type PurchaseOrder struct {
	entity.Document

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// ExpectedDate is when delivery is expected
	ExpectedDate *time.Time `db:"expected_date" json:"expectedDate,omitempty"`

	Status Status `db:"status" json:"status"`

	// Estimated totals (calculated from lines)
	TaxableAmount types.Money `db:"taxable_amount" json:"taxableAmount"`
	TotalGST      types.Money `db:"total_gst" json:"totalGst"`
	GrandTotal    types.Money `db:"grand_total" json:"grandTotal"`

	// IsInterstate drives the estimated tax split
	IsInterstate bool `db:"is_interstate" json:"isInterstate"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one ordered item.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	MedicineID id.ID `db:"medicine_id" json:"medicineId"`

	Quantity        types.Quantity `db:"quantity" json:"quantity"`
	UnitRate        types.Money    `db:"unit_rate" json:"unitRate"`
	DiscountPercent types.Percent  `db:"discount_percent" json:"discountPercent"`
	GSTRate         types.Percent  `db:"gst_rate" json:"gstRate"`

	// IsFree marks expected scheme stock, carried at zero value
	IsFree bool `db:"is_free" json:"isFree"`

	// Estimated line amounts
	TaxableAmount types.Money `db:"taxable_amount" json:"taxableAmount"`
	GSTAmount     types.Money `db:"gst_amount" json:"gstAmount"`
	LineTotal     types.Money `db:"line_total" json:"lineTotal"`
}

// LineRequest is the input for adding one line.
type LineRequest struct {
	MedicineID      id.ID
	Quantity        types.Quantity
	UnitRate        types.Money
	DiscountPercent types.Percent
	GSTRate         types.Percent
	IsFree          bool
}

// NewPurchaseOrder creates a new order.
func NewPurchaseOrder(hospitalID, branchID, supplierID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:   entity.NewDocument(hospitalID, branchID),
		SupplierID: supplierID,
		Status:     StatusOpen,
		Lines:      make([]Line, 0),
	}
}

// AddLine adds an ordered item and recalculates totals.
func (p *PurchaseOrder) AddLine(req LineRequest) error {
	calc, err := gst.Calculate(gst.LineInput{
		Quantity:        req.Quantity,
		UnitRate:        req.UnitRate,
		DiscountPercent: req.DiscountPercent,
		GSTRate:         req.GSTRate,
		IsFree:          req.IsFree,
		IsInterstate:    p.IsInterstate,
	})
	if err != nil {
		return err
	}

	p.Lines = append(p.Lines, Line{
		LineID:          id.New(),
		LineNo:          len(p.Lines) + 1,
		MedicineID:      req.MedicineID,
		Quantity:        req.Quantity,
		UnitRate:        req.UnitRate,
		DiscountPercent: req.DiscountPercent,
		GSTRate:         req.GSTRate,
		IsFree:          req.IsFree,
		TaxableAmount:   calc.TaxableAmount,
		GSTAmount:       calc.TotalGSTAmount,
		LineTotal:       calc.LineTotal,
	})
	p.RecalculateTotals()
	return nil
}

// RecalculateTotals updates order totals from lines.
func (p *PurchaseOrder) RecalculateTotals() {
	p.TaxableAmount = types.Zero()
	p.TotalGST = types.Zero()
	p.GrandTotal = types.Zero()

	for _, line := range p.Lines {
		p.TaxableAmount = p.TaxableAmount.Add(line.TaxableAmount)
		p.TotalGST = p.TotalGST.Add(line.GSTAmount)
		p.GrandTotal = p.GrandTotal.Add(line.LineTotal)
	}
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
		if id.IsNil(line.MedicineID) {
			return apperror.NewValidation("medicine is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// MarkReceived transitions the order after its invoice arrives.
func (p *PurchaseOrder) MarkReceived() error {
	if p.Status != StatusOpen {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"Only open orders can be received").
			WithDetail("status", string(p.Status))
	}
	p.Status = StatusReceived
	p.Touch()
	return nil
}

// Cancel closes the order without receiving.
func (p *PurchaseOrder) Cancel() error {
	if p.Status != StatusOpen {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"Only open orders can be cancelled").
			WithDetail("status", string(p.Status))
	}
	p.Status = StatusCancelled
	p.Touch()
	return nil
}
