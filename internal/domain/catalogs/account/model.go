// Package account provides the Account catalog (chart of accounts).
package account

import (
	"context"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
)

// AccountType defines the accounting classification.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

// Account represents one entry in the chart of accounts.
type Account struct {
	entity.Catalog

	// Type is the accounting classification
	Type AccountType `db:"type" json:"type"`

	// ParentID groups accounts into a hierarchy
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`

	// IsGroup accounts only structure the chart and cannot be posted to
	IsGroup bool `db:"is_group" json:"isGroup"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewAccount creates a new Account with required fields.
func NewAccount(hospitalID id.ID, code, name string, accType AccountType) *Account {
	return &Account{
		Catalog: entity.NewCatalog(hospitalID, code, name),
		Type:    accType,
	}
}

// Validate implements entity.Validatable interface.
func (a *Account) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidAccountType(a.Type) {
		return apperror.NewValidation("invalid account type").
			WithDetail("field", "type").
			WithDetail("value", string(a.Type))
	}

	// Chart codes are mandatory, unlike other catalogs.
	if a.Code == "" {
		return apperror.NewValidation("account code is required").
			WithDetail("field", "code")
	}

	return nil
}

// IsDebitNormal returns true for accounts whose balance grows on the
// debit side.
func (a *Account) IsDebitNormal() bool {
	return a.Type == TypeAsset || a.Type == TypeExpense
}

// CanPost returns an error if the account is a group or inactive.
func (a *Account) CanPost() error {
	if a.IsGroup {
		return apperror.NewValidation("cannot post to a group account").
			WithDetail("account", a.Code)
	}
	if !a.Active {
		return apperror.NewValidation("cannot post to an inactive account").
			WithDetail("account", a.Code)
	}
	return nil
}

func isValidAccountType(t AccountType) bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}
	return false
}
