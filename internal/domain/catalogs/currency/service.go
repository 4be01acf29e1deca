package currency

import (
	"context"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/core/types"
	"rxledger/internal/domain"
)

// Service provides business logic for the Currency catalog.
type Service struct {
	*domain.CatalogService[*Currency]
	repo Repository
}

// NewService creates a new Currency service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Currency]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "currency",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Currency) error {
	if c.Code == "" {
		c.Code = c.ISOCode
	}

	if c.IsBase {
		existing, err := s.repo.GetBaseCurrency(ctx)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != c.ID {
			return apperror.NewConflict("base currency already configured").
				WithDetail("existing", existing.ISOCode)
		}
	}

	return nil
}

// GetBaseCurrency retrieves the accounting currency.
func (s *Service) GetBaseCurrency(ctx context.Context) (*Currency, error) {
	return s.repo.GetBaseCurrency(ctx)
}

// UpdateExchangeRate sets a new exchange rate for a non-base currency.
func (s *Service) UpdateExchangeRate(ctx context.Context, isoCode string, rate types.Money) error {
	c, err := s.repo.GetByISOCode(ctx, isoCode)
	if err != nil {
		return err
	}
	if c.IsBase {
		return apperror.NewValidation("cannot set exchange rate on base currency").
			WithDetail("isoCode", isoCode)
	}
	if rate.IsNegative() || rate.IsZero() {
		return apperror.NewValidation("exchange rate must be positive").
			WithDetail("field", "exchangeRate")
	}

	c.ExchangeRate = rate
	return s.Update(ctx, c)
}
