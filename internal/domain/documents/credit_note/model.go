// Package credit_note provides the CreditNote document.
// Credit notes reduce the amount owed to a supplier: rate differences,
// expiry or breakage returns, scheme adjustments. Return notes also
// issue the returned stock FIFO from branch batches.
package credit_note

import (
	"context"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/posting"
)

// Reason is the commercial cause of the credit.
type Reason string

const (
	ReasonRateDifference Reason = "rate_difference"
	ReasonReturn         Reason = "return"
	ReasonExpiry         Reason = "expiry"
	ReasonBreakage       Reason = "breakage"
	ReasonScheme         Reason = "scheme"
)

// CreditNote represents a supplier credit note.
type CreditNote struct {
	entity.Document
	entity.CurrencyAware

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// InvoiceID links the credit to an invoice. Nil for general credits.
	InvoiceID *id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	// PaymentID links the credit to a payment instead. The credit then
	// settles whatever invoice that payment settles.
	PaymentID *id.ID `db:"payment_id" json:"paymentId,omitempty"`

	Reason Reason `db:"reason" json:"reason"`

	// SupplierCreditNoteNumber is the supplier's own reference
	SupplierCreditNoteNumber *string `db:"supplier_credit_note_number" json:"supplierCreditNoteNumber,omitempty"`

	CreditAmount types.Money `db:"credit_amount" json:"creditAmount"`

	// ReturnLines list stock going back to the supplier. Only present
	// for return, expiry and breakage reasons.
	ReturnLines []ReturnLine `db:"-" json:"returnLines,omitempty"`

	// accounts is attached by the service right before posting
	accounts *ledger.AccountMapping
}

// ReturnLine is one returned item.
type ReturnLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	MedicineID id.ID          `db:"medicine_id" json:"medicineId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
}

// NewCreditNote creates a new credit note.
func NewCreditNote(hospitalID, branchID, supplierID id.ID, reason Reason, amount types.Money) *CreditNote {
	return &CreditNote{
		Document:     entity.NewDocument(hospitalID, branchID),
		SupplierID:   supplierID,
		Reason:       reason,
		CreditAmount: amount,
	}
}

// AddReturnLine appends a returned item.
func (c *CreditNote) AddReturnLine(medicineID id.ID, quantity types.Quantity) {
	c.ReturnLines = append(c.ReturnLines, ReturnLine{
		LineID:     id.New(),
		LineNo:     len(c.ReturnLines) + 1,
		MedicineID: medicineID,
		Quantity:   quantity,
	})
}

// HasStockEffect reports whether posting must issue stock.
func (c *CreditNote) HasStockEffect() bool {
	switch c.Reason {
	case ReasonReturn, ReasonExpiry, ReasonBreakage:
		return len(c.ReturnLines) > 0
	}
	return false
}

// Validate implements entity.Validatable.
func (c *CreditNote) Validate(ctx context.Context) error {
	if err := c.Document.Validate(ctx); err != nil {
		return err
	}
	if err := c.ValidateCurrency(ctx); err != nil {
		return err
	}

	if id.IsNil(c.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if c.InvoiceID != nil && c.PaymentID != nil {
		return apperror.NewValidation("credit note links to an invoice or a payment, not both").
			WithDetail("field", "paymentId")
	}

	if !isValidReason(c.Reason) {
		return apperror.NewValidation("invalid credit note reason").
			WithDetail("field", "reason").
			WithDetail("value", string(c.Reason))
	}

	if !c.CreditAmount.IsPositive() {
		return apperror.NewValidation("credit amount must be positive").
			WithDetail("field", "creditAmount")
	}

	for i, line := range c.ReturnLines {
		if id.IsNil(line.MedicineID) {
			return apperror.NewValidation("medicine is required").
				WithDetail("field", "returnLines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "returnLines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// WithAccounts attaches the role-to-account mapping used during posting.
func (c *CreditNote) WithAccounts(mapping *ledger.AccountMapping) *CreditNote {
	c.accounts = mapping
	return c
}

// GetDocumentType returns the document type name.
func (c *CreditNote) GetDocumentType() string {
	return "CreditNote"
}

// GenerateMovements creates ledger and stock effects for this credit note.
func (c *CreditNote) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	if c.accounts == nil {
		return nil, apperror.NewAccountNotConfigured("account mapping not attached")
	}

	movements := posting.NewMovementSet()

	glTx, err := ledger.BuildCreditNoteTransaction(ctx, c.accounts, ledger.CreditNoteEvent{
		HospitalID:   c.HospitalID,
		BranchID:     c.BranchID,
		CreditNoteID: c.ID,
		Date:         c.Date,
		Amount:       c.ToBase(c.CreditAmount),
	})
	if err != nil {
		return nil, err
	}
	movements.SetLedger(glTx)

	if c.HasStockEffect() {
		for _, line := range c.ReturnLines {
			movements.AddIssue(posting.StockIssue{
				BranchID:   c.BranchID,
				MedicineID: line.MedicineID,
				Quantity:   line.Quantity,
			})
		}
	}

	return movements, nil
}

func isValidReason(r Reason) bool {
	switch r {
	case ReasonRateDifference, ReasonReturn, ReasonExpiry, ReasonBreakage, ReasonScheme:
		return true
	}
	return false
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*CreditNote)(nil)
