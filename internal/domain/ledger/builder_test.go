package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

func fullMapping(hospitalID id.ID) *AccountMapping {
	m := NewAccountMapping(hospitalID)
	for _, role := range []AccountRole{
		RoleAccountsPayable, RolePurchaseExpense,
		RoleCGSTInput, RoleSGSTInput, RoleIGSTInput,
		RoleSupplierAdvance, RoleCreditNote,
		RoleCash, RoleCheque, RoleBank, RoleUPI,
	} {
		m.Bind(role, id.New())
	}
	return m
}

func assertBalanced(t *testing.T, tx *GLTransaction) {
	t.Helper()
	require.NoError(t, tx.Validate(context.Background()))
	assert.True(t, tx.TotalDebit.Equal(tx.TotalCredit),
		"debit %s != credit %s", tx.TotalDebit, tx.TotalCredit)
}

func TestBuildInvoiceTransaction(t *testing.T) {
	hospitalID := id.New()
	mapping := fullMapping(hospitalID)

	tx, err := BuildInvoiceTransaction(context.Background(), mapping, InvoiceEvent{
		HospitalID:    hospitalID,
		BranchID:      id.New(),
		InvoiceID:     id.New(),
		Date:          time.Now(),
		TaxableAmount: types.MustMoney("1000"),
		CGSTAmount:    types.MustMoney("60"),
		SGSTAmount:    types.MustMoney("60"),
		IGSTAmount:    types.Zero(),
		GrandTotal:    types.MustMoney("1120"),
	})
	require.NoError(t, err)
	assertBalanced(t, tx)

	// expense + cgst + sgst debits, ap credit
	assert.Len(t, tx.Entries, 4)
	assert.True(t, tx.TotalDebit.Equal(types.MustMoney("1120")))
	assert.Equal(t, EventPurchaseInvoice, tx.EventType)
}

func TestBuildInvoiceTransaction_ComponentMismatch(t *testing.T) {
	mapping := fullMapping(id.New())

	_, err := BuildInvoiceTransaction(context.Background(), mapping, InvoiceEvent{
		InvoiceID:     id.New(),
		TaxableAmount: types.MustMoney("1000"),
		CGSTAmount:    types.MustMoney("60"),
		SGSTAmount:    types.MustMoney("60"),
		GrandTotal:    types.MustMoney("9999"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestBuildInvoiceTransaction_MissingTaxAccount(t *testing.T) {
	hospitalID := id.New()
	mapping := NewAccountMapping(hospitalID).
		Bind(RoleAccountsPayable, id.New()).
		Bind(RolePurchaseExpense, id.New())
		// no CGST input account bound

	_, err := BuildInvoiceTransaction(context.Background(), mapping, InvoiceEvent{
		HospitalID:    hospitalID,
		InvoiceID:     id.New(),
		TaxableAmount: types.MustMoney("1000"),
		CGSTAmount:    types.MustMoney("60"),
		SGSTAmount:    types.MustMoney("60"),
		GrandTotal:    types.MustMoney("1120"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAccountNotConfigured, appErr.Code)
	assert.Equal(t, "cgst_input", appErr.Details["role"])
}

func TestBuildPaymentTransaction_MultiMethod(t *testing.T) {
	hospitalID := id.New()
	mapping := fullMapping(hospitalID)
	invoiceID := id.New()

	tx, err := BuildPaymentTransaction(context.Background(), mapping, PaymentEvent{
		HospitalID: hospitalID,
		PaymentID:  id.New(),
		Date:       time.Now(),
		InvoiceID:  &invoiceID,
		Amount:     types.MustMoney("1000"),
		Methods: PaymentMethodAmounts{
			Cash: types.MustMoney("400"),
			Bank: types.MustMoney("600"),
		},
	})
	require.NoError(t, err)
	assertBalanced(t, tx)

	// one AP debit, one credit per method used
	assert.Len(t, tx.Entries, 3)
	assert.Equal(t, EventPayment, tx.EventType)
}

func TestBuildPaymentTransaction_UnlinkedPostsToAdvance(t *testing.T) {
	hospitalID := id.New()
	mapping := fullMapping(hospitalID)
	advanceAccount, err := mapping.Resolve(RoleSupplierAdvance)
	require.NoError(t, err)

	tx, err := BuildPaymentTransaction(context.Background(), mapping, PaymentEvent{
		HospitalID: hospitalID,
		PaymentID:  id.New(),
		Amount:     types.MustMoney("500"),
		Methods:    PaymentMethodAmounts{Cash: types.MustMoney("500")},
	})
	require.NoError(t, err)
	assertBalanced(t, tx)

	assert.Equal(t, EventAdvancePayment, tx.EventType)
	assert.Equal(t, advanceAccount, tx.Entries[0].AccountID)
}

func TestBuildPaymentTransaction_AdvanceAccountNotConfigured(t *testing.T) {
	hospitalID := id.New()
	mapping := NewAccountMapping(hospitalID).
		Bind(RoleAccountsPayable, id.New()).
		Bind(RoleCash, id.New())

	_, err := BuildPaymentTransaction(context.Background(), mapping, PaymentEvent{
		HospitalID: hospitalID,
		PaymentID:  id.New(),
		Amount:     types.MustMoney("500"),
		Methods:    PaymentMethodAmounts{Cash: types.MustMoney("500")},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAccountNotConfigured, appErr.Code)
}

func TestBuildPaymentTransaction_MethodMismatch(t *testing.T) {
	mapping := fullMapping(id.New())
	invoiceID := id.New()

	_, err := BuildPaymentTransaction(context.Background(), mapping, PaymentEvent{
		PaymentID: id.New(),
		InvoiceID: &invoiceID,
		Amount:    types.MustMoney("1000"),
		Methods:   PaymentMethodAmounts{Cash: types.MustMoney("999")},
	})
	require.Error(t, err)
}

func TestBuildCreditNoteTransaction(t *testing.T) {
	mapping := fullMapping(id.New())

	tx, err := BuildCreditNoteTransaction(context.Background(), mapping, CreditNoteEvent{
		CreditNoteID: id.New(),
		Date:         time.Now(),
		Amount:       types.MustMoney("200"),
	})
	require.NoError(t, err)
	assertBalanced(t, tx)
	assert.Len(t, tx.Entries, 2)
}

func TestBuildRefundTransaction(t *testing.T) {
	mapping := fullMapping(id.New())

	tx, err := BuildRefundTransaction(context.Background(), mapping, RefundEvent{
		RefundID: id.New(),
		Date:     time.Now(),
		Amount:   types.MustMoney("300"),
		Methods:  PaymentMethodAmounts{Bank: types.MustMoney("300")},
	})
	require.NoError(t, err)
	assertBalanced(t, tx)
	assert.Equal(t, EventRefund, tx.EventType)
}

func TestReversed_SwapsDebitsAndCredits(t *testing.T) {
	hospitalID := id.New()
	mapping := fullMapping(hospitalID)

	original, err := BuildInvoiceTransaction(context.Background(), mapping, InvoiceEvent{
		HospitalID:    hospitalID,
		InvoiceID:     id.New(),
		Date:          time.Now(),
		TaxableAmount: types.MustMoney("1000"),
		IGSTAmount:    types.MustMoney("120"),
		CGSTAmount:    types.Zero(),
		SGSTAmount:    types.Zero(),
		GrandTotal:    types.MustMoney("1120"),
	})
	require.NoError(t, err)

	rev := original.Reversed(time.Now())
	assertBalanced(t, rev)

	assert.Equal(t, EventReversal, rev.EventType)
	require.NotNil(t, rev.ReversalOf)
	assert.Equal(t, original.ID, *rev.ReversalOf)
	assert.True(t, rev.TotalDebit.Equal(original.TotalCredit))
	assert.True(t, rev.TotalCredit.Equal(original.TotalDebit))

	// entry-by-entry swap
	require.Len(t, rev.Entries, len(original.Entries))
	for i, e := range original.Entries {
		assert.Equal(t, e.AccountID, rev.Entries[i].AccountID)
		assert.True(t, e.DebitAmount.Equal(rev.Entries[i].CreditAmount))
		assert.True(t, e.CreditAmount.Equal(rev.Entries[i].DebitAmount))
	}
}

func TestValidate_RejectsImbalance(t *testing.T) {
	tx := newTransaction(id.New(), id.New(), "PurchaseInvoice", id.New(), EventPurchaseInvoice, time.Now())
	tx.addDebit(id.New(), types.MustMoney("100"), "")
	tx.addCredit(id.New(), types.MustMoney("90"), "")

	err := tx.Validate(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeLedgerImbalance, appErr.Code)
}

func TestValidate_RejectsBothSidesSet(t *testing.T) {
	tx := newTransaction(id.New(), id.New(), "Payment", id.New(), EventPayment, time.Now())
	tx.Entries = append(tx.Entries, GLEntry{
		LineID:       id.New(),
		LineNo:       1,
		AccountID:    id.New(),
		DebitAmount:  types.MustMoney("50"),
		CreditAmount: types.MustMoney("50"),
	})
	tx.TotalDebit = types.MustMoney("50")
	tx.TotalCredit = types.MustMoney("50")

	require.Error(t, tx.Validate(context.Background()))
}

func TestValidate_RejectsEmpty(t *testing.T) {
	tx := newTransaction(id.New(), id.New(), "Payment", id.New(), EventPayment, time.Now())
	require.Error(t, tx.Validate(context.Background()))
}
