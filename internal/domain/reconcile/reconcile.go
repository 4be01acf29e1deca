// Package reconcile derives the authoritative payment position of an
// invoice from its approved payments and linked credit notes.
//
// The result is a pure projection: stored payment_status columns are
// advisory caches and must be overwritten by this computation on every
// read path that displays them.
package reconcile

import (
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// PaymentStatus is the derived settlement state of an invoice.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// paidEpsilon absorbs presentation rounding: anything within a paisa of
// zero counts as settled.
var paidEpsilon = types.MustMoney("0.01")

// PaymentView is the reconciliation engine's read model of a payment.
// Only approved payments count toward the balance.
type PaymentView struct {
	ID       id.ID
	Amount   types.Money
	Approved bool
}

// CreditNoteView is the read model of a credit note linked to the
// invoice, directly or through one of its payments.
type CreditNoteView struct {
	ID           id.ID
	CreditAmount types.Money
}

// Balance is the derived settlement snapshot.
type Balance struct {
	GrossPayments     types.Money `json:"grossPayments"`
	CreditAdjustments types.Money `json:"creditAdjustments"`

	// NetPaymentTotal keeps its sign for audit; an over-credited invoice
	// goes negative here.
	NetPaymentTotal types.Money `json:"netPaymentTotal"`

	// DisplayNetPayment floors the net at zero for presentation.
	DisplayNetPayment types.Money `json:"displayNetPayment"`

	BalanceDue types.Money   `json:"balanceDue"`
	Status     PaymentStatus `json:"status"`
}

// Reconcile computes the settlement position. Pure and idempotent:
// identical inputs always yield an identical Balance.
//
// The net payment is floored at zero before it is subtracted from the
// invoice total, so an over-credited invoice owes the full total rather
// than a negative balance.
func Reconcile(invoiceTotal types.Money, payments []PaymentView, creditNotes []CreditNoteView) Balance {
	gross := types.Zero()
	for _, p := range payments {
		if !p.Approved {
			// Draft, pending and rejected payments never reduce the balance.
			continue
		}
		gross = gross.Add(p.Amount)
	}

	credits := types.Zero()
	for _, cn := range creditNotes {
		credits = credits.Add(cn.CreditAmount)
	}

	net := gross.Sub(credits)

	displayNet := net
	if displayNet.IsNegative() {
		displayNet = types.Zero()
	}

	due := invoiceTotal.Sub(displayNet)
	if due.IsNegative() {
		due = types.Zero()
	}

	return Balance{
		GrossPayments:     gross,
		CreditAdjustments: credits,
		NetPaymentTotal:   net,
		DisplayNetPayment: displayNet,
		BalanceDue:        due,
		Status:            status(invoiceTotal, net, due),
	}
}

func status(invoiceTotal, net, due types.Money) PaymentStatus {
	switch {
	case due.LessThanOrEqual(paidEpsilon):
		return StatusPaid
	case net.IsPositive() && net.LessThan(invoiceTotal):
		return StatusPartial
	default:
		return StatusUnpaid
	}
}
