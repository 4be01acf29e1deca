package ledger

import (
	"context"
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// Repository defines persistence for GL transactions.
type Repository interface {
	// Create inserts a transaction with its entries atomically.
	// Must fail with apperror.CodeDuplicate when a posted transaction
	// for the same (document_type, document_id) already exists.
	Create(ctx context.Context, tx *GLTransaction) error

	// GetByID retrieves a transaction with entries.
	GetByID(ctx context.Context, txID id.ID) (*GLTransaction, error)

	// GetPostedByDocument finds the posted, non-reversed transaction for
	// a source document. Returns apperror.CodeNotFound when none exists.
	GetPostedByDocument(ctx context.Context, docType string, docID id.ID) (*GLTransaction, error)

	// GetEntries loads the ordered entries of one transaction.
	GetEntries(ctx context.Context, txID id.ID) ([]GLEntry, error)

	// MarkReversed records that a transaction has been undone by reversalID.
	MarkReversed(ctx context.Context, txID, reversalID id.ID) error

	// ListByAccount returns entries for an account statement.
	ListByAccount(ctx context.Context, accountID id.ID, filter StatementFilter) ([]StatementLine, error)
}

// StatementFilter bounds an account statement query.
type StatementFilter struct {
	FromDate time.Time
	ToDate   time.Time
	Limit    int
	Offset   int
}

// StatementLine is one row of an account statement.
type StatementLine struct {
	TransactionID id.ID       `db:"transaction_id" json:"transactionId"`
	Date          time.Time   `db:"date" json:"date"`
	EventType     EventType   `db:"event_type" json:"eventType"`
	DocumentType  string      `db:"document_type" json:"documentType"`
	DocumentID    id.ID       `db:"document_id" json:"documentId"`
	Narration     string      `db:"narration" json:"narration"`
	DebitAmount   types.Money `db:"debit_amount" json:"debitAmount"`
	CreditAmount  types.Money `db:"credit_amount" json:"creditAmount"`
}
