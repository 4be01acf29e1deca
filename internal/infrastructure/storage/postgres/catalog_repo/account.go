package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	appctx "rxledger/internal/core/context"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/catalogs/account"
	"rxledger/internal/infrastructure/storage/postgres"

	"github.com/georgysavva/scany/v2/pgxscan"
)

const (
	accountTable     = "cat_accounts"
	accountRoleTable = "cat_account_roles"
)

// AccountRepo implements account.Repository.
type AccountRepo struct {
	*BaseCatalogRepo[*account.Account]
}

// NewAccountRepo creates a new chart-of-accounts repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*account.Account](
			txManager,
			accountTable,
			postgres.ExtractDBColumns[account.Account](),
			func() *account.Account { return &account.Account{} },
		),
	}
}

var _ account.Repository = (*AccountRepo)(nil)

// ListByType retrieves accounts of a given classification.
func (r *AccountRepo) ListByType(ctx context.Context, accType account.AccountType) ([]*account.Account, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"type": accType}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	return r.FindMany(ctx, q)
}

// GetChildren retrieves direct children of a group account.
func (r *AccountRepo) GetChildren(ctx context.Context, parentID id.ID) ([]*account.Account, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"parent_id": parentID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	return r.FindMany(ctx, q)
}

// SaveRoleBinding binds a posting role to an account, replacing any
// previous binding for that role.
func (r *AccountRepo) SaveRoleBinding(ctx context.Context, binding account.RoleBinding) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (hospital_id, role, account_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (hospital_id, role) DO UPDATE SET account_id = $3
	`, accountRoleTable)

	_, err := r.Querier(ctx).Exec(ctx, sql, binding.HospitalID, binding.Role, binding.AccountID)
	if err != nil {
		return fmt.Errorf("save role binding: %w", err)
	}
	return nil
}

// GetRoleBindings retrieves all posting role bindings for the hospital.
func (r *AccountRepo) GetRoleBindings(ctx context.Context) ([]account.RoleBinding, error) {
	sql := fmt.Sprintf(`
		SELECT hospital_id, role, account_id
		FROM %s
		WHERE hospital_id = $1
		ORDER BY role
	`, accountRoleTable)

	var bindings []account.RoleBinding
	if err := pgxscan.Select(ctx, r.Querier(ctx), &bindings, sql, appctx.GetHospitalID(ctx)); err != nil {
		return nil, fmt.Errorf("get role bindings: %w", err)
	}
	return bindings, nil
}
