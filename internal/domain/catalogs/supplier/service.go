package supplier

import (
	"context"
	"fmt"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain"
)

// Service provides business logic for the Supplier catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, sup *Supplier) error {
	if sup.Code == "" {
		code, err := s.GenerateCode(ctx, "SUP")
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		sup.Code = code
	}

	return s.checkGSTINUnique(ctx, sup)
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, sup *Supplier) error {
	return s.checkGSTINUnique(ctx, sup)
}

// FindByGSTIN retrieves supplier by GSTIN.
func (s *Service) FindByGSTIN(ctx context.Context, gstin string) (*Supplier, error) {
	return s.repo.FindByGSTIN(ctx, gstin)
}

func (s *Service) checkGSTINUnique(ctx context.Context, sup *Supplier) error {
	if !sup.IsRegistered() {
		return nil
	}

	exists, err := s.checkGSTINExists(ctx, *sup.GSTIN, sup.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("supplier with this GSTIN already exists").
			WithDetail("gstin", *sup.GSTIN)
	}
	return nil
}

// checkGSTINExists checks if GSTIN is already used by another supplier.
func (s *Service) checkGSTINExists(ctx context.Context, gstin string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByGSTIN(ctx, gstin)
	if err != nil {
		// Not found is OK; other errors must be propagated.
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
