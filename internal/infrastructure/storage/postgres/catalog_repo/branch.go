package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"rxledger/internal/core/apperror"
	"rxledger/internal/domain/catalogs/branch"
	"rxledger/internal/infrastructure/storage/postgres"
)

const branchTable = "cat_branches"

// BranchRepo implements branch.Repository.
type BranchRepo struct {
	*BaseCatalogRepo[*branch.Branch]
}

// NewBranchRepo creates a new branch repository.
func NewBranchRepo(txManager *postgres.TxManager) *BranchRepo {
	return &BranchRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*branch.Branch](
			txManager,
			branchTable,
			postgres.ExtractDBColumns[branch.Branch](),
			func() *branch.Branch { return &branch.Branch{} },
		),
	}
}

var _ branch.Repository = (*BranchRepo)(nil)

// GetDefault retrieves the default branch for the hospital.
func (r *BranchRepo) GetDefault(ctx context.Context) (*branch.Branch, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	b, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("branch", "default")
		}
		return nil, err
	}
	return b, nil
}
