// Package purchase_invoice provides the PurchaseInvoice document.
// Posting an invoice books the supplier liability in the general ledger
// and receives the invoiced lots into branch stock.
package purchase_invoice

import (
	"context"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/gst"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/posting"
	"rxledger/internal/domain/registers/batch"
)

// PurchaseInvoice represents a supplier's GST invoice.
type PurchaseInvoice struct {
	entity.Document
	entity.CurrencyAware

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// PurchaseOrderID links back to the originating order, if any
	PurchaseOrderID *id.ID `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`

	// Supplier's own invoice reference
	SupplierInvoiceNumber string     `db:"supplier_invoice_number" json:"supplierInvoiceNumber"`
	SupplierInvoiceDate   *time.Time `db:"supplier_invoice_date" json:"supplierInvoiceDate,omitempty"`

	// IsInterstate selects IGST over CGST+SGST for every line
	IsInterstate bool `db:"is_interstate" json:"isInterstate"`

	// Totals (aggregated from lines, unrounded in memory, rounded at
	// the API boundary)
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	TotalDiscount  types.Money `db:"total_discount" json:"totalDiscount"`
	TaxableAmount  types.Money `db:"taxable_amount" json:"taxableAmount"`
	TotalCGST      types.Money `db:"total_cgst" json:"totalCgst"`
	TotalSGST      types.Money `db:"total_sgst" json:"totalSgst"`
	TotalIGST      types.Money `db:"total_igst" json:"totalIgst"`
	TotalGSTAmount types.Money `db:"total_gst_amount" json:"totalGstAmount"`
	GrandTotal     types.Money `db:"grand_total" json:"grandTotal"`

	Lines []Line `db:"-" json:"lines"`

	// accounts is attached by the service right before posting
	accounts *ledger.AccountMapping
}

// Line is one invoiced item with its lot identity and tax breakdown.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	MedicineID id.ID `db:"medicine_id" json:"medicineId"`

	// Lot identity for stock receipt
	BatchNumber string    `db:"batch_number" json:"batchNumber"`
	ExpiryDate  time.Time `db:"expiry_date" json:"expiryDate"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// FreeQuantity is scheme stock: received into the lot, never billed
	FreeQuantity types.Quantity `db:"free_quantity" json:"freeQuantity"`

	UnitRate        types.Money   `db:"unit_rate" json:"unitRate"`
	DiscountPercent types.Percent `db:"discount_percent" json:"discountPercent"`
	GSTRate         types.Percent `db:"gst_rate" json:"gstRate"`

	// IsFree marks a scheme-only line: rate and discount are zeroed,
	// amounts all calculate to zero.
	IsFree bool `db:"is_free" json:"isFree"`

	// ConversionFactor is dispensing units per stocking unit, display only
	ConversionFactor types.Money `db:"conversion_factor" json:"conversionFactor"`

	// Calculated amounts
	BaseAmount     types.Money `db:"base_amount" json:"baseAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxableAmount  types.Money `db:"taxable_amount" json:"taxableAmount"`
	CGSTAmount     types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount     types.Money `db:"sgst_amount" json:"sgstAmount"`
	IGSTAmount     types.Money `db:"igst_amount" json:"igstAmount"`
	LineTotal      types.Money `db:"line_total" json:"lineTotal"`
}

// LineRequest is the input for adding one line.
type LineRequest struct {
	MedicineID       id.ID
	BatchNumber      string
	ExpiryDate       time.Time
	Quantity         types.Quantity
	FreeQuantity     types.Quantity
	UnitRate         types.Money
	DiscountPercent  types.Percent
	GSTRate          types.Percent
	ConversionFactor types.Money
	IsFree           bool
}

// NewPurchaseInvoice creates a new invoice.
func NewPurchaseInvoice(hospitalID, branchID, supplierID id.ID) *PurchaseInvoice {
	return &PurchaseInvoice{
		Document:   entity.NewDocument(hospitalID, branchID),
		SupplierID: supplierID,
		Lines:      make([]Line, 0),
	}
}

// AddLine calculates and appends one line, then refreshes totals.
func (p *PurchaseInvoice) AddLine(req LineRequest) error {
	// A line with only scheme stock is free even without the flag.
	free := req.IsFree || (!req.Quantity.IsPositive() && req.FreeQuantity.IsPositive())

	calc, err := gst.Calculate(gst.LineInput{
		Quantity:         req.Quantity,
		UnitRate:         req.UnitRate,
		GSTRate:          req.GSTRate,
		DiscountPercent:  req.DiscountPercent,
		IsFree:           free,
		IsInterstate:     p.IsInterstate,
		ConversionFactor: req.ConversionFactor,
	})
	if err != nil {
		return err
	}

	p.Lines = append(p.Lines, Line{
		LineID:           id.New(),
		LineNo:           len(p.Lines) + 1,
		MedicineID:       req.MedicineID,
		BatchNumber:      req.BatchNumber,
		ExpiryDate:       req.ExpiryDate,
		Quantity:         req.Quantity,
		FreeQuantity:     req.FreeQuantity,
		UnitRate:         req.UnitRate,
		DiscountPercent:  req.DiscountPercent,
		GSTRate:          req.GSTRate,
		IsFree:           free,
		ConversionFactor: req.ConversionFactor,
		BaseAmount:       calc.BaseAmount,
		DiscountAmount:   calc.DiscountAmount,
		TaxableAmount:    calc.TaxableAmount,
		CGSTAmount:       calc.CGSTAmount,
		SGSTAmount:       calc.SGSTAmount,
		IGSTAmount:       calc.IGSTAmount,
		LineTotal:        calc.LineTotal,
	})
	p.RecalculateTotals()
	return nil
}

// RecalculateTotals re-aggregates document totals from lines.
func (p *PurchaseInvoice) RecalculateTotals() {
	calcs := make([]gst.CalculatedLine, len(p.Lines))
	for i, l := range p.Lines {
		calcs[i] = gst.CalculatedLine{
			BaseAmount:     l.BaseAmount,
			DiscountAmount: l.DiscountAmount,
			TaxableAmount:  l.TaxableAmount,
			CGSTAmount:     l.CGSTAmount,
			SGSTAmount:     l.SGSTAmount,
			IGSTAmount:     l.IGSTAmount,
			TotalGSTAmount: l.CGSTAmount.Add(l.SGSTAmount).Add(l.IGSTAmount),
			LineTotal:      l.LineTotal,
		}
	}

	totals := gst.Aggregate(calcs)
	p.Subtotal = totals.Subtotal
	p.TotalDiscount = totals.TotalDiscount
	p.TaxableAmount = totals.TaxableAmount
	p.TotalCGST = totals.TotalCGST
	p.TotalSGST = totals.TotalSGST
	p.TotalIGST = totals.TotalIGST
	p.TotalGSTAmount = totals.TotalGSTAmount
	p.GrandTotal = totals.GrandTotal
}

// Validate implements entity.Validatable.
func (p *PurchaseInvoice) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if err := p.ValidateCurrency(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if p.SupplierInvoiceNumber == "" {
		return apperror.NewValidation("supplier invoice number is required").
			WithDetail("field", "supplierInvoiceNumber")
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
		if line.BatchNumber == "" {
			return apperror.NewValidation("batch number is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.ExpiryDate.IsZero() {
			return apperror.NewValidation("expiry date is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() && !line.FreeQuantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// CanPost rejects posting invoices with expired lots.
func (p *PurchaseInvoice) CanPost(ctx context.Context) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	for i, line := range p.Lines {
		if line.ExpiryDate.Before(p.Date) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"Cannot receive an already expired batch").
				WithDetail("lineNo", i+1).
				WithDetail("batchNumber", line.BatchNumber)
		}
	}

	return nil
}

// WithAccounts attaches the role-to-account mapping used during posting.
func (p *PurchaseInvoice) WithAccounts(mapping *ledger.AccountMapping) *PurchaseInvoice {
	p.accounts = mapping
	return p
}

// GetDocumentType returns the document type name.
func (p *PurchaseInvoice) GetDocumentType() string {
	return "PurchaseInvoice"
}

// GenerateMovements creates ledger and stock effects for this invoice.
func (p *PurchaseInvoice) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	if p.accounts == nil {
		return nil, apperror.NewAccountNotConfigured("account mapping not attached")
	}

	movements := posting.NewMovementSet()

	glTx, err := ledger.BuildInvoiceTransaction(ctx, p.accounts, ledger.InvoiceEvent{
		HospitalID:    p.HospitalID,
		BranchID:      p.BranchID,
		InvoiceID:     p.ID,
		Date:          p.Date,
		TaxableAmount: p.ToBase(p.TaxableAmount),
		CGSTAmount:    p.ToBase(p.TotalCGST),
		SGSTAmount:    p.ToBase(p.TotalSGST),
		IGSTAmount:    p.ToBase(p.TotalIGST),
		GrandTotal:    p.ToBase(p.GrandTotal),
	})
	if err != nil {
		return nil, err
	}
	movements.SetLedger(glTx)

	for _, line := range p.Lines {
		// Billed and free units land in the same lot.
		total := line.Quantity + line.FreeQuantity
		movements.AddReceipt(batch.StockReceipt{
			BranchID:     p.BranchID,
			MedicineID:   line.MedicineID,
			BatchNumber:  line.BatchNumber,
			ExpiryDate:   line.ExpiryDate,
			Quantity:     total,
			PurchaseRate: line.UnitRate,
		})
	}

	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*PurchaseInvoice)(nil)
