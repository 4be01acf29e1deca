// Package ledger provides the general-ledger double-entry poster.
// Every financial event (invoice, payment, credit note, refund, advance)
// becomes one balanced GLTransaction; the ledger is append-only and
// reversals are new transactions with debit/credit swapped.
package ledger

import (
	"context"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// EventType identifies the business event a transaction records.
type EventType string

const (
	EventPurchaseInvoice EventType = "purchase_invoice"
	EventPayment         EventType = "payment"
	EventAdvancePayment  EventType = "advance_payment"
	EventCreditNote      EventType = "credit_note"
	EventRefund          EventType = "refund"
	EventReversal        EventType = "reversal"
)

// GLEntry is a single debit or credit against one ledger account.
// Exactly one of DebitAmount/CreditAmount is non-zero.
type GLEntry struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	LineNo    int   `db:"line_no" json:"lineNo"`
	AccountID id.ID `db:"account_id" json:"accountId"`

	DebitAmount  types.Money `db:"debit_amount" json:"debitAmount"`
	CreditAmount types.Money `db:"credit_amount" json:"creditAmount"`

	// Narration describes what this leg records (e.g. "CGST input credit")
	Narration string `db:"narration" json:"narration,omitempty"`
}

// GLTransaction is one balanced set of entries recording a single event.
// Owns its entries exclusively; header totals must equal entry sums.
type GLTransaction struct {
	ID         id.ID `db:"id" json:"id"`
	HospitalID id.ID `db:"hospital_id" json:"hospitalId"`
	BranchID   id.ID `db:"branch_id" json:"branchId"`

	// Source document this transaction records. The pair
	// (DocumentType, DocumentID) is unique among posted transactions.
	DocumentType string `db:"document_type" json:"documentType"`
	DocumentID   id.ID  `db:"document_id" json:"documentId"`

	EventType   EventType `db:"event_type" json:"eventType"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description,omitempty"`

	TotalDebit  types.Money `db:"total_debit" json:"totalDebit"`
	TotalCredit types.Money `db:"total_credit" json:"totalCredit"`

	Posted bool `db:"posted" json:"posted"`

	// ReversalOf links a reversal to the transaction it undoes.
	ReversalOf *id.ID `db:"reversal_of" json:"reversalOf,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Entries []GLEntry `db:"-" json:"entries"`
}

// newTransaction builds an empty transaction header for an event.
func newTransaction(hospitalID, branchID id.ID, docType string, docID id.ID, event EventType, date time.Time) *GLTransaction {
	return &GLTransaction{
		ID:           id.New(),
		HospitalID:   hospitalID,
		BranchID:     branchID,
		DocumentType: docType,
		DocumentID:   docID,
		EventType:    event,
		Date:         date,
		TotalDebit:   types.Zero(),
		TotalCredit:  types.Zero(),
		CreatedAt:    time.Now().UTC(),
	}
}

// addDebit appends a debit entry. Zero amounts are skipped so builders
// can pass optional components unconditionally.
func (t *GLTransaction) addDebit(accountID id.ID, amount types.Money, narration string) {
	if amount.IsZero() {
		return
	}
	t.Entries = append(t.Entries, GLEntry{
		LineID:       id.New(),
		LineNo:       len(t.Entries) + 1,
		AccountID:    accountID,
		DebitAmount:  amount,
		CreditAmount: types.Zero(),
		Narration:    narration,
	})
	t.TotalDebit = t.TotalDebit.Add(amount)
}

// addCredit appends a credit entry. Zero amounts are skipped.
func (t *GLTransaction) addCredit(accountID id.ID, amount types.Money, narration string) {
	if amount.IsZero() {
		return
	}
	t.Entries = append(t.Entries, GLEntry{
		LineID:       id.New(),
		LineNo:       len(t.Entries) + 1,
		AccountID:    accountID,
		DebitAmount:  types.Zero(),
		CreditAmount: amount,
		Narration:    narration,
	})
	t.TotalCredit = t.TotalCredit.Add(amount)
}

// Validate enforces the double-entry invariants. A failure here is a
// programming error: the transaction must never reach persistence.
func (t *GLTransaction) Validate(ctx context.Context) error {
	if len(t.Entries) == 0 {
		return apperror.NewValidation("transaction has no entries").
			WithDetail("document_id", t.DocumentID.String())
	}

	sumDebit := types.Zero()
	sumCredit := types.Zero()
	for i, e := range t.Entries {
		if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
			return apperror.NewValidation("entry amounts cannot be negative").
				WithDetail("line_no", i+1)
		}
		debitSet := !e.DebitAmount.IsZero()
		creditSet := !e.CreditAmount.IsZero()
		if debitSet == creditSet {
			return apperror.NewValidation("entry must have exactly one of debit or credit").
				WithDetail("line_no", i+1).
				WithDetail("account_id", e.AccountID.String())
		}
		sumDebit = sumDebit.Add(e.DebitAmount)
		sumCredit = sumCredit.Add(e.CreditAmount)
	}

	// Header totals must match entry sums exactly.
	if !t.TotalDebit.Equal(sumDebit) || !t.TotalCredit.Equal(sumCredit) {
		return apperror.NewLedgerImbalance(t.TotalDebit.String(), t.TotalCredit.String()).
			WithDetail("entry_debit_sum", sumDebit.String()).
			WithDetail("entry_credit_sum", sumCredit.String())
	}

	// Zero tolerance: amounts are already-rounded currency values.
	if !sumDebit.Equal(sumCredit) {
		return apperror.NewLedgerImbalance(sumDebit.String(), sumCredit.String()).
			WithDetail("document_id", t.DocumentID.String()).
			WithDetail("event_type", string(t.EventType))
	}

	return nil
}

// Reversed builds a new transaction with every debit and credit swapped.
// The original is never mutated: the ledger is append-only.
func (t *GLTransaction) Reversed(date time.Time) *GLTransaction {
	rev := newTransaction(t.HospitalID, t.BranchID, t.DocumentType, t.DocumentID, EventReversal, date)
	rev.Description = "Reversal of " + t.ID.String()
	originalID := t.ID
	rev.ReversalOf = &originalID

	for _, e := range t.Entries {
		if !e.DebitAmount.IsZero() {
			rev.addCredit(e.AccountID, e.DebitAmount, e.Narration)
		} else {
			rev.addDebit(e.AccountID, e.CreditAmount, e.Narration)
		}
	}

	return rev
}
