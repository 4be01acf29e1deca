package ledger

import (
	"context"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// InvoiceEvent carries the amounts of a posted purchase invoice.
// Amounts are document-level totals already converted to base currency.
type InvoiceEvent struct {
	HospitalID id.ID
	BranchID   id.ID
	InvoiceID  id.ID
	Date       time.Time

	TaxableAmount types.Money
	CGSTAmount    types.Money
	SGSTAmount    types.Money
	IGSTAmount    types.Money
	GrandTotal    types.Money
}

// PaymentMethodAmounts is the method breakdown of one supplier payment.
// The non-zero parts must sum to the payment amount.
type PaymentMethodAmounts struct {
	Cash   types.Money
	Cheque types.Money
	Bank   types.Money
	UPI    types.Money
}

// Total sums the method sub-amounts.
func (p PaymentMethodAmounts) Total() types.Money {
	return p.Cash.Add(p.Cheque).Add(p.Bank).Add(p.UPI)
}

// PaymentEvent carries an approved supplier payment.
// A nil InvoiceID marks an advance (unlinked) payment.
type PaymentEvent struct {
	HospitalID id.ID
	BranchID   id.ID
	PaymentID  id.ID
	Date       time.Time

	InvoiceID *id.ID
	Amount    types.Money
	Methods   PaymentMethodAmounts
}

// CreditNoteEvent carries a supplier credit note.
type CreditNoteEvent struct {
	HospitalID   id.ID
	BranchID     id.ID
	CreditNoteID id.ID
	Date         time.Time

	Amount types.Money
}

// RefundEvent carries money returned by a supplier against an advance.
type RefundEvent struct {
	HospitalID id.ID
	BranchID   id.ID
	RefundID   id.ID
	Date       time.Time

	Amount  types.Money
	Methods PaymentMethodAmounts
}

// BuildInvoiceTransaction posts a purchase invoice:
// one Accounts Payable credit for the grand total, balanced by debits to
// the purchase expense account and the input-tax accounts.
func BuildInvoiceTransaction(ctx context.Context, mapping *AccountMapping, ev InvoiceEvent) (*GLTransaction, error) {
	components := ev.TaxableAmount.Add(ev.CGSTAmount).Add(ev.SGSTAmount).Add(ev.IGSTAmount)
	if !components.Equal(ev.GrandTotal) {
		return nil, apperror.NewValidation("invoice components do not sum to grand total").
			WithDetail("components", components.String()).
			WithDetail("grand_total", ev.GrandTotal.String())
	}

	apAccount, err := mapping.Resolve(RoleAccountsPayable)
	if err != nil {
		return nil, err
	}
	expenseAccount, err := mapping.Resolve(RolePurchaseExpense)
	if err != nil {
		return nil, err
	}

	tx := newTransaction(ev.HospitalID, ev.BranchID, "PurchaseInvoice", ev.InvoiceID, EventPurchaseInvoice, ev.Date)
	tx.addDebit(expenseAccount, ev.TaxableAmount, "Purchase expense")

	// Tax input accounts are resolved only when the component is present,
	// but a present component with a missing binding aborts the post.
	taxLegs := []struct {
		role   AccountRole
		amount types.Money
		label  string
	}{
		{RoleCGSTInput, ev.CGSTAmount, "CGST input credit"},
		{RoleSGSTInput, ev.SGSTAmount, "SGST input credit"},
		{RoleIGSTInput, ev.IGSTAmount, "IGST input credit"},
	}
	for _, leg := range taxLegs {
		if leg.amount.IsZero() {
			continue
		}
		account, err := mapping.Resolve(leg.role)
		if err != nil {
			return nil, err
		}
		tx.addDebit(account, leg.amount, leg.label)
	}

	tx.addCredit(apAccount, ev.GrandTotal, "Accounts payable")

	if err := tx.Validate(ctx); err != nil {
		return nil, err
	}
	return tx, nil
}

// BuildPaymentTransaction posts a supplier payment:
// one debit to Accounts Payable (or Supplier Advance when the payment is
// not linked to any invoice), balanced by one credit per method used.
func BuildPaymentTransaction(ctx context.Context, mapping *AccountMapping, ev PaymentEvent) (*GLTransaction, error) {
	if !ev.Methods.Total().Equal(ev.Amount) {
		return nil, apperror.NewValidation("payment method breakdown does not sum to amount").
			WithDetail("methods_total", ev.Methods.Total().String()).
			WithDetail("amount", ev.Amount.String())
	}

	debitRole := RoleAccountsPayable
	event := EventPayment
	if ev.InvoiceID == nil {
		debitRole = RoleSupplierAdvance
		event = EventAdvancePayment
	}
	debitAccount, err := mapping.Resolve(debitRole)
	if err != nil {
		return nil, err
	}

	tx := newTransaction(ev.HospitalID, ev.BranchID, "Payment", ev.PaymentID, event, ev.Date)
	tx.addDebit(debitAccount, ev.Amount, string(debitRole))

	if err := addMethodCredits(tx, mapping, ev.Methods); err != nil {
		return nil, err
	}

	if err := tx.Validate(ctx); err != nil {
		return nil, err
	}
	return tx, nil
}

// BuildCreditNoteTransaction posts a supplier credit note: it reduces
// the amount owed, debiting Accounts Payable against the adjustment
// account.
func BuildCreditNoteTransaction(ctx context.Context, mapping *AccountMapping, ev CreditNoteEvent) (*GLTransaction, error) {
	if !ev.Amount.IsPositive() {
		return nil, apperror.NewValidation("credit amount must be positive").
			WithDetail("amount", ev.Amount.String())
	}

	apAccount, err := mapping.Resolve(RoleAccountsPayable)
	if err != nil {
		return nil, err
	}
	adjAccount, err := mapping.Resolve(RoleCreditNote)
	if err != nil {
		return nil, err
	}

	tx := newTransaction(ev.HospitalID, ev.BranchID, "CreditNote", ev.CreditNoteID, EventCreditNote, ev.Date)
	tx.addDebit(apAccount, ev.Amount, "Accounts payable adjustment")
	tx.addCredit(adjAccount, ev.Amount, "Supplier credit note")

	if err := tx.Validate(ctx); err != nil {
		return nil, err
	}
	return tx, nil
}

// BuildRefundTransaction posts money returned by a supplier: the method
// accounts receive the funds, the supplier advance is released.
func BuildRefundTransaction(ctx context.Context, mapping *AccountMapping, ev RefundEvent) (*GLTransaction, error) {
	if !ev.Methods.Total().Equal(ev.Amount) {
		return nil, apperror.NewValidation("refund method breakdown does not sum to amount").
			WithDetail("methods_total", ev.Methods.Total().String()).
			WithDetail("amount", ev.Amount.String())
	}

	advanceAccount, err := mapping.Resolve(RoleSupplierAdvance)
	if err != nil {
		return nil, err
	}

	tx := newTransaction(ev.HospitalID, ev.BranchID, "Refund", ev.RefundID, EventRefund, ev.Date)

	methodLegs := []struct {
		role   AccountRole
		amount types.Money
	}{
		{RoleCash, ev.Methods.Cash},
		{RoleCheque, ev.Methods.Cheque},
		{RoleBank, ev.Methods.Bank},
		{RoleUPI, ev.Methods.UPI},
	}
	for _, leg := range methodLegs {
		if leg.amount.IsZero() {
			continue
		}
		account, err := mapping.Resolve(leg.role)
		if err != nil {
			return nil, err
		}
		tx.addDebit(account, leg.amount, string(leg.role)+" refund received")
	}

	tx.addCredit(advanceAccount, ev.Amount, "Supplier advance released")

	if err := tx.Validate(ctx); err != nil {
		return nil, err
	}
	return tx, nil
}

// addMethodCredits credits one entry per method actually used.
func addMethodCredits(tx *GLTransaction, mapping *AccountMapping, methods PaymentMethodAmounts) error {
	legs := []struct {
		role   AccountRole
		amount types.Money
	}{
		{RoleCash, methods.Cash},
		{RoleCheque, methods.Cheque},
		{RoleBank, methods.Bank},
		{RoleUPI, methods.UPI},
	}
	for _, leg := range legs {
		if leg.amount.IsZero() {
			continue
		}
		if leg.amount.IsNegative() {
			return apperror.NewValidation("method amount cannot be negative").
				WithDetail("method", string(leg.role))
		}
		account, err := mapping.Resolve(leg.role)
		if err != nil {
			return err
		}
		tx.addCredit(account, leg.amount, string(leg.role)+" payment")
	}
	return nil
}
