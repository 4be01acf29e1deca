package branch

import (
	"context"
	"fmt"

	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain"
)

// Service provides business logic for the Branch catalog.
type Service struct {
	*domain.CatalogService[*Branch]
	repo Repository
}

// NewService creates a new Branch service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Branch]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "branch",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, b *Branch) error {
	if b.Code == "" {
		code, err := s.GenerateCode(ctx, "BR")
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		b.Code = code
	}
	return nil
}

// GetDefault retrieves the default branch.
func (s *Service) GetDefault(ctx context.Context) (*Branch, error) {
	return s.repo.GetDefault(ctx)
}
