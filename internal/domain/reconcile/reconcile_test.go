package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

func pay(amount string, approved bool) PaymentView {
	return PaymentView{ID: id.New(), Amount: types.MustMoney(amount), Approved: approved}
}

func credit(amount string) CreditNoteView {
	return CreditNoteView{ID: id.New(), CreditAmount: types.MustMoney(amount)}
}

func TestReconcile_FullyPaid(t *testing.T) {
	b := Reconcile(types.MustMoney("1120"), []PaymentView{pay("1120", true)}, nil)

	assert.True(t, b.BalanceDue.IsZero())
	assert.Equal(t, StatusPaid, b.Status)
}

func TestReconcile_PartialWithCreditNote(t *testing.T) {
	// invoice 1120, approved payment 500, credit note 200 → net 300, due 820
	b := Reconcile(
		types.MustMoney("1120"),
		[]PaymentView{pay("500", true)},
		[]CreditNoteView{credit("200")},
	)

	assert.True(t, b.NetPaymentTotal.Equal(types.MustMoney("300")), "net: %s", b.NetPaymentTotal)
	assert.True(t, b.BalanceDue.Equal(types.MustMoney("820")), "due: %s", b.BalanceDue)
	assert.Equal(t, StatusPartial, b.Status)
}

func TestReconcile_UnapprovedPaymentsExcluded(t *testing.T) {
	b := Reconcile(types.MustMoney("1000"), []PaymentView{
		pay("400", false), // draft/pending/rejected
		pay("100", true),
	}, nil)

	assert.True(t, b.GrossPayments.Equal(types.MustMoney("100")))
	assert.True(t, b.BalanceDue.Equal(types.MustMoney("900")))
	assert.Equal(t, StatusPartial, b.Status)
}

func TestReconcile_OverCredited(t *testing.T) {
	// credits exceed gross payments: net goes negative, but balance due
	// treats negative net as zero payment
	b := Reconcile(
		types.MustMoney("1000"),
		[]PaymentView{pay("200", true)},
		[]CreditNoteView{credit("500")},
	)

	assert.True(t, b.NetPaymentTotal.Equal(types.MustMoney("-300")), "signed net retained: %s", b.NetPaymentTotal)
	assert.True(t, b.DisplayNetPayment.IsZero())
	assert.True(t, b.BalanceDue.Equal(types.MustMoney("1000")))
	assert.Equal(t, StatusUnpaid, b.Status)
}

func TestReconcile_NoPayments(t *testing.T) {
	b := Reconcile(types.MustMoney("500"), nil, nil)

	assert.True(t, b.BalanceDue.Equal(types.MustMoney("500")))
	assert.Equal(t, StatusUnpaid, b.Status)
}

func TestReconcile_PaidWithinEpsilon(t *testing.T) {
	b := Reconcile(types.MustMoney("100.00"), []PaymentView{pay("99.99", true)}, nil)
	assert.Equal(t, StatusPaid, b.Status)
}

func TestReconcile_Overpaid(t *testing.T) {
	b := Reconcile(types.MustMoney("100"), []PaymentView{pay("150", true)}, nil)

	assert.True(t, b.BalanceDue.IsZero())
	assert.Equal(t, StatusPaid, b.Status)
}

func TestReconcile_Idempotent(t *testing.T) {
	total := types.MustMoney("1120")
	payments := []PaymentView{pay("500", true), pay("100", false)}
	credits := []CreditNoteView{credit("200")}

	a := Reconcile(total, payments, credits)
	b := Reconcile(total, payments, credits)

	assert.Equal(t, a.Status, b.Status)
	assert.True(t, a.BalanceDue.Equal(b.BalanceDue))
	assert.True(t, a.NetPaymentTotal.Equal(b.NetPaymentTotal))
}

func TestReconcile_Monotonicity(t *testing.T) {
	total := types.MustMoney("1000")
	payments := []PaymentView{pay("300", true)}
	credits := []CreditNoteView{credit("100")}

	before := Reconcile(total, payments, credits)

	// Adding an approved payment never increases balance due.
	withPayment := Reconcile(total, append(payments, pay("50", true)), credits)
	assert.True(t, withPayment.BalanceDue.LessThanOrEqual(before.BalanceDue))

	// Adding a credit note never decreases balance due.
	withCredit := Reconcile(total, payments, append(credits, credit("50")))
	assert.True(t, withCredit.BalanceDue.GreaterThanOrEqual(before.BalanceDue))
}
