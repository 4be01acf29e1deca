// Package purchase_invoice provides the PurchaseInvoice document repository.
package purchase_invoice

import (
	"context"
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
	"rxledger/internal/domain/reconcile"
)

// Repository defines operations for purchase invoice documents.
type Repository interface {
	Create(ctx context.Context, doc *PurchaseInvoice) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error)
	GetByNumber(ctx context.Context, number string) (*PurchaseInvoice, error)
	Update(ctx context.Context, doc *PurchaseInvoice) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseInvoice], error)

	// FindBySupplierInvoice detects duplicate supplier references.
	FindBySupplierInvoice(ctx context.Context, supplierID id.ID, supplierInvoiceNumber string) (*PurchaseInvoice, error)

	// GetForUpdate retrieves the invoice with a row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseInvoice, error)
}

// SettlementReader supplies the settlement legs the balance calculation
// needs. Implemented in infrastructure over the payment and credit note
// tables to keep this package free of document-to-document imports.
type SettlementReader interface {
	// ApprovedPayments lists approved payments linked to the invoice.
	ApprovedPayments(ctx context.Context, invoiceID id.ID) ([]reconcile.PaymentView, error)

	// CreditNotes lists posted credit notes linked to the invoice.
	CreditNotes(ctx context.Context, invoiceID id.ID) ([]reconcile.CreditNoteView, error)
}

// ListFilter for filtering purchase invoices.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	Posted     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
