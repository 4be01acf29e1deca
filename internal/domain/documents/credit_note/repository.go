// Package credit_note provides the CreditNote document repository.
package credit_note

import (
	"context"
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
)

// Repository defines operations for credit note documents.
type Repository interface {
	Create(ctx context.Context, doc *CreditNote) error
	GetByID(ctx context.Context, docID id.ID) (*CreditNote, error)
	GetByNumber(ctx context.Context, number string) (*CreditNote, error)
	Update(ctx context.Context, doc *CreditNote) error
	Delete(ctx context.Context, docID id.ID) error

	GetReturnLines(ctx context.Context, docID id.ID) ([]ReturnLine, error)
	SaveReturnLines(ctx context.Context, docID id.ID, lines []ReturnLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*CreditNote], error)

	// ListByInvoice retrieves credit notes linked to an invoice.
	ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*CreditNote, error)
}

// ListFilter for filtering credit notes.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	InvoiceID  *id.ID
	PaymentID  *id.ID
	Reason     *Reason
	Posted     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
