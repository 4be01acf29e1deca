package medicine

import (
	"context"
	"fmt"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain"
)

// Service provides business logic for the Medicine catalog.
type Service struct {
	*domain.CatalogService[*Medicine]
	repo Repository
}

// NewService creates a new Medicine service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Medicine]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "medicine",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, m *Medicine) error {
	if m.Code == "" {
		code, err := s.GenerateCode(ctx, "MED")
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		m.Code = code
	}

	if m.Barcode != nil && *m.Barcode != "" {
		existing, err := s.repo.FindByBarcode(ctx, *m.Barcode)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != m.ID {
			return apperror.NewConflict("medicine with this barcode already exists").
				WithDetail("barcode", *m.Barcode)
		}
	}

	return nil
}

// FindByBarcode retrieves medicine by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Medicine, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// ListBelowReorderLevel retrieves medicines needing reorder.
func (s *Service) ListBelowReorderLevel(ctx context.Context) ([]*Medicine, error) {
	return s.repo.ListBelowReorderLevel(ctx)
}
