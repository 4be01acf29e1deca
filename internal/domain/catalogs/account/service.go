package account

import (
	"context"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain"
	"rxledger/internal/domain/ledger"
)

// Service provides business logic for the chart of accounts.
type Service struct {
	*domain.CatalogService[*Account]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Account service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Account]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "account",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeDelete(svc.checkNotBound)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, a *Account) error {
	exists, err := s.repo.ExistsByCode(ctx, a.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("account", "code", a.Code)
	}

	if a.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *a.ParentID)
		if err != nil {
			return err
		}
		if !parent.IsGroup {
			return apperror.NewValidation("parent account must be a group").
				WithDetail("parentId", a.ParentID.String())
		}
	}

	return nil
}

// checkNotBound prevents removing an account a posting role points at.
func (s *Service) checkNotBound(ctx context.Context, a *Account) error {
	bindings, err := s.repo.GetRoleBindings(ctx)
	if err != nil {
		return err
	}
	for _, b := range bindings {
		if b.AccountID == a.ID {
			return apperror.NewConflict("account is bound to a posting role").
				WithDetail("role", string(b.Role)).
				WithDetail("account", a.Code)
		}
	}
	return nil
}

// BindRole binds a posting role to an account. The account must be a
// postable leaf.
func (s *Service) BindRole(ctx context.Context, role ledger.AccountRole, accountID id.ID) error {
	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := acc.CanPost(); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SaveRoleBinding(ctx, RoleBinding{
			HospitalID: acc.HospitalID,
			Role:       role,
			AccountID:  accountID,
		})
	})
}

// LoadMapping builds the role-to-account mapping the ledger poster uses.
func (s *Service) LoadMapping(ctx context.Context, hospitalID id.ID) (*ledger.AccountMapping, error) {
	bindings, err := s.repo.GetRoleBindings(ctx)
	if err != nil {
		return nil, err
	}

	mapping := ledger.NewAccountMapping(hospitalID)
	for _, b := range bindings {
		mapping.Bind(b.Role, b.AccountID)
	}
	return mapping, nil
}

// ListByType retrieves accounts of a given classification.
func (s *Service) ListByType(ctx context.Context, accType AccountType) ([]*Account, error) {
	return s.repo.ListByType(ctx, accType)
}
