// Package payment provides the Payment document.
// Payments settle supplier invoices (or book advances when unlinked)
// and go through an approval workflow before they reach the ledger.
package payment

import (
	"context"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/posting"
)

// Status is the payment workflow state.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// Payment represents money paid to a supplier.
type Payment struct {
	entity.Document
	entity.CurrencyAware

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// InvoiceID links the payment to an invoice. Nil marks an advance.
	InvoiceID *id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	Amount types.Money `db:"amount" json:"amount"`

	// Method breakdown; non-zero parts must sum to Amount
	CashAmount   types.Money `db:"cash_amount" json:"cashAmount"`
	ChequeAmount types.Money `db:"cheque_amount" json:"chequeAmount"`
	BankAmount   types.Money `db:"bank_amount" json:"bankAmount"`
	UPIAmount    types.Money `db:"upi_amount" json:"upiAmount"`

	// Cheque details, required when ChequeAmount > 0
	ChequeNumber *string    `db:"cheque_number" json:"chequeNumber,omitempty"`
	ChequeDate   *time.Time `db:"cheque_date" json:"chequeDate,omitempty"`
	BankName     *string    `db:"bank_name" json:"bankName,omitempty"`

	// Reference is the UPI/bank transaction reference
	Reference *string `db:"reference" json:"reference,omitempty"`

	Status Status `db:"status" json:"status"`

	// MatchedRule is the approval rule that forced the workflow, for audit
	MatchedRule *string `db:"matched_rule" json:"matchedRule,omitempty"`

	// Approval audit
	ApprovedBy *string    `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	RejectedBy *string    `db:"rejected_by" json:"rejectedBy,omitempty"`
	RejectedAt *time.Time `db:"rejected_at" json:"rejectedAt,omitempty"`

	// RejectionReason explains a rejection
	RejectionReason *string `db:"rejection_reason" json:"rejectionReason,omitempty"`

	// accounts is attached by the service right before posting
	accounts *ledger.AccountMapping
}

// NewPayment creates a new draft payment.
func NewPayment(hospitalID, branchID, supplierID id.ID, amount types.Money) *Payment {
	return &Payment{
		Document:   entity.NewDocument(hospitalID, branchID),
		SupplierID: supplierID,
		Amount:     amount,
		Status:     StatusDraft,
	}
}

// Methods returns the ledger-facing method breakdown.
func (p *Payment) Methods() ledger.PaymentMethodAmounts {
	return ledger.PaymentMethodAmounts{
		Cash:   p.CashAmount,
		Cheque: p.ChequeAmount,
		Bank:   p.BankAmount,
		UPI:    p.UPIAmount,
	}
}

// IsAdvance reports whether the payment is not linked to an invoice.
func (p *Payment) IsAdvance() bool {
	return p.InvoiceID == nil
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
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

	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	for _, part := range []struct {
		name   string
		amount types.Money
	}{
		{"cashAmount", p.CashAmount},
		{"chequeAmount", p.ChequeAmount},
		{"bankAmount", p.BankAmount},
		{"upiAmount", p.UPIAmount},
	} {
		if part.amount.IsNegative() {
			return apperror.NewValidation("method amount cannot be negative").
				WithDetail("field", part.name)
		}
	}

	if !p.Methods().Total().Equal(p.Amount) {
		return apperror.NewValidation("method breakdown does not sum to amount").
			WithDetail("methods_total", p.Methods().Total().String()).
			WithDetail("amount", p.Amount.String())
	}

	if p.ChequeAmount.IsPositive() {
		if p.ChequeNumber == nil || *p.ChequeNumber == "" {
			return apperror.NewValidation("cheque number is required for cheque payments").
				WithDetail("field", "chequeNumber")
		}
		if p.ChequeDate == nil {
			return apperror.NewValidation("cheque date is required for cheque payments").
				WithDetail("field", "chequeDate")
		}
	}

	return nil
}

// --- Workflow transitions ---

// SubmitForApproval moves the draft into the approval queue.
func (p *Payment) SubmitForApproval(matchedRule string) error {
	if p.Status != StatusDraft {
		return p.invalidTransition(StatusPendingApproval)
	}
	p.Status = StatusPendingApproval
	p.MatchedRule = &matchedRule
	p.Touch()
	return nil
}

// AutoApprove approves a draft that matched no approval rule.
func (p *Payment) AutoApprove() error {
	if p.Status != StatusDraft {
		return p.invalidTransition(StatusApproved)
	}
	now := time.Now().UTC()
	p.Status = StatusApproved
	p.ApprovedAt = &now
	p.Touch()
	return nil
}

// Approve records a manual approval.
func (p *Payment) Approve(approverID string) error {
	if p.Status != StatusPendingApproval {
		return p.invalidTransition(StatusApproved)
	}
	now := time.Now().UTC()
	p.Status = StatusApproved
	p.ApprovedBy = &approverID
	p.ApprovedAt = &now
	p.Touch()
	return nil
}

// Reject records a rejection with a reason.
func (p *Payment) Reject(rejecterID, reason string) error {
	if p.Status != StatusPendingApproval {
		return p.invalidTransition(StatusRejected)
	}
	now := time.Now().UTC()
	p.Status = StatusRejected
	p.RejectedBy = &rejecterID
	p.RejectedAt = &now
	p.RejectionReason = &reason
	p.Touch()
	return nil
}

func (p *Payment) invalidTransition(to Status) error {
	return apperror.NewBusinessRule(apperror.CodeBusinessRule,
		"Invalid payment status transition").
		WithDetail("from", string(p.Status)).
		WithDetail("to", string(to))
}

// CanPost allows posting only approved payments.
func (p *Payment) CanPost(ctx context.Context) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if p.Status != StatusApproved {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"Only approved payments can be posted").
			WithDetail("status", string(p.Status))
	}
	return nil
}

// WithAccounts attaches the role-to-account mapping used during posting.
func (p *Payment) WithAccounts(mapping *ledger.AccountMapping) *Payment {
	p.accounts = mapping
	return p
}

// GetDocumentType returns the document type name.
func (p *Payment) GetDocumentType() string {
	return "Payment"
}

// GenerateMovements creates the ledger effect for this payment.
func (p *Payment) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	if p.accounts == nil {
		return nil, apperror.NewAccountNotConfigured("account mapping not attached")
	}

	glTx, err := ledger.BuildPaymentTransaction(ctx, p.accounts, ledger.PaymentEvent{
		HospitalID: p.HospitalID,
		BranchID:   p.BranchID,
		PaymentID:  p.ID,
		Date:       p.Date,
		InvoiceID:  p.InvoiceID,
		Amount:     p.ToBase(p.Amount),
		Methods: ledger.PaymentMethodAmounts{
			Cash:   p.ToBase(p.CashAmount),
			Cheque: p.ToBase(p.ChequeAmount),
			Bank:   p.ToBase(p.BankAmount),
			UPI:    p.ToBase(p.UPIAmount),
		},
	})
	if err != nil {
		return nil, err
	}

	movements := posting.NewMovementSet()
	movements.SetLedger(glTx)
	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*Payment)(nil)
