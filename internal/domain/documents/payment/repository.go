// Package payment provides the Payment document repository.
package payment

import (
	"context"
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
)

// Repository defines operations for payment documents.
type Repository interface {
	Create(ctx context.Context, doc *Payment) error
	GetByID(ctx context.Context, docID id.ID) (*Payment, error)
	GetByNumber(ctx context.Context, number string) (*Payment, error)
	Update(ctx context.Context, doc *Payment) error
	Delete(ctx context.Context, docID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error)

	// ListByInvoice retrieves payments linked to an invoice.
	ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*Payment, error)

	// ListPendingApproval retrieves the approval queue.
	ListPendingApproval(ctx context.Context, branchID *id.ID) ([]*Payment, error)

	// GetForUpdate retrieves the payment with a row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*Payment, error)
}

// ListFilter for filtering payments.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	InvoiceID  *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
