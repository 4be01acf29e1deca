package account

import (
	"context"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
	"rxledger/internal/domain/ledger"
)

// RoleBinding associates a posting role with a chart account.
type RoleBinding struct {
	HospitalID id.ID              `db:"hospital_id" json:"hospitalId"`
	Role       ledger.AccountRole `db:"role" json:"role"`
	AccountID  id.ID              `db:"account_id" json:"accountId"`
}

// Repository defines the interface for Account persistence.
type Repository interface {
	domain.CatalogRepository[*Account]

	// ListByType retrieves accounts of a given classification.
	ListByType(ctx context.Context, accType AccountType) ([]*Account, error)

	// GetChildren retrieves direct children of a group account.
	GetChildren(ctx context.Context, parentID id.ID) ([]*Account, error)

	// SaveRoleBinding binds a posting role to an account, replacing any
	// previous binding for that role.
	SaveRoleBinding(ctx context.Context, binding RoleBinding) error

	// GetRoleBindings retrieves all role bindings for the hospital.
	GetRoleBindings(ctx context.Context) ([]RoleBinding, error)
}
