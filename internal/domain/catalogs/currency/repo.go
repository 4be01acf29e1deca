package currency

import (
	"context"

	"rxledger/internal/domain"
)

// Repository defines the interface for Currency persistence.
type Repository interface {
	domain.CatalogRepository[*Currency]

	// GetBaseCurrency retrieves the hospital's accounting currency.
	GetBaseCurrency(ctx context.Context) (*Currency, error)

	// GetByISOCode retrieves currency by ISO alphabetic code.
	GetByISOCode(ctx context.Context, isoCode string) (*Currency, error)
}
