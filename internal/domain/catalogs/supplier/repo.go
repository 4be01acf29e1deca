package supplier

import (
	"context"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByGSTIN retrieves supplier by GSTIN (unique within hospital).
	FindByGSTIN(ctx context.Context, gstin string) (*Supplier, error)

	// GetForUpdate retrieves supplier with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Supplier, error)
}
