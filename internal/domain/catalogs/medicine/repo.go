package medicine

import (
	"context"

	"rxledger/internal/domain"
)

// Repository defines the interface for Medicine persistence.
type Repository interface {
	domain.CatalogRepository[*Medicine]

	// FindByBarcode retrieves medicine by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Medicine, error)

	// ListBelowReorderLevel retrieves medicines whose total stock across
	// batches is below the configured reorder level.
	ListBelowReorderLevel(ctx context.Context) ([]*Medicine, error)
}
