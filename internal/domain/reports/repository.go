package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// Supplier ledger
	GetSupplierOutstanding(ctx context.Context, filter SupplierOutstandingFilter) (*SupplierOutstandingReport, error)

	// Tax
	GetGSTInputSummary(ctx context.Context, filter GSTInputFilter) (*GSTInputReport, error)

	// Stock
	GetExpiringStock(ctx context.Context, filter ExpiringStockFilter) (*ExpiringStockReport, error)

	// Document journal
	GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error)
	GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)
}
