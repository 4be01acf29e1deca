package ledger

import (
	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
)

// AccountRole is a semantic name the poster resolves to a concrete
// chart-of-accounts identifier.
type AccountRole string

const (
	RoleAccountsPayable AccountRole = "accounts_payable"
	RolePurchaseExpense AccountRole = "purchase_expense"
	RoleCGSTInput       AccountRole = "cgst_input"
	RoleSGSTInput       AccountRole = "sgst_input"
	RoleIGSTInput       AccountRole = "igst_input"
	RoleSupplierAdvance AccountRole = "supplier_advance"
	RoleCreditNote      AccountRole = "credit_note_adjustment"

	RoleCash   AccountRole = "cash"
	RoleCheque AccountRole = "cheque"
	RoleBank   AccountRole = "bank"
	RoleUPI    AccountRole = "upi"
)

// AccountMapping binds semantic roles to ledger accounts for one hospital.
// It is constructed once per hospital and passed into the poster
// explicitly - never read from ambient process-wide state.
type AccountMapping struct {
	HospitalID id.ID
	accounts   map[AccountRole]id.ID
}

// NewAccountMapping creates an empty mapping for a hospital.
func NewAccountMapping(hospitalID id.ID) *AccountMapping {
	return &AccountMapping{
		HospitalID: hospitalID,
		accounts:   make(map[AccountRole]id.ID),
	}
}

// Bind associates a role with a ledger account.
func (m *AccountMapping) Bind(role AccountRole, accountID id.ID) *AccountMapping {
	m.accounts[role] = accountID
	return m
}

// Resolve returns the account bound to role. A missing binding is a
// configuration error the caller must surface - never skip the entry.
func (m *AccountMapping) Resolve(role AccountRole) (id.ID, error) {
	accountID, ok := m.accounts[role]
	if !ok || id.IsNil(accountID) {
		return id.Nil(), apperror.NewAccountNotConfigured(string(role))
	}
	return accountID, nil
}

// Has reports whether a role is bound without resolving it.
func (m *AccountMapping) Has(role AccountRole) bool {
	accountID, ok := m.accounts[role]
	return ok && !id.IsNil(accountID)
}
