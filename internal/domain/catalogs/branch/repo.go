package branch

import (
	"context"

	"rxledger/internal/domain"
)

// Repository defines the interface for Branch persistence.
type Repository interface {
	domain.CatalogRepository[*Branch]

	// GetDefault retrieves the default branch for the hospital.
	GetDefault(ctx context.Context) (*Branch, error)
}
