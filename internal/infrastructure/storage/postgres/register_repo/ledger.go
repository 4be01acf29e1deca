package register_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"rxledger/internal/core/apperror"
	appctx "rxledger/internal/core/context"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/infrastructure/storage/postgres"
)

const (
	glTransactionsTable = "reg_gl_transactions"
	glEntriesTable      = "reg_gl_entries"

	// Partial unique index on (hospital_id, document_type, document_id)
	// WHERE posted AND reversal_of IS NULL.
	glPostedDocumentConstraint = "uq_gl_posted_document"
)

var glTransactionColumns = []string{
	"id", "hospital_id", "branch_id",
	"document_type", "document_id", "event_type",
	"date", "description", "total_debit", "total_credit",
	"posted", "reversal_of", "created_at",
}

var glEntryColumns = []string{
	"line_id", "line_no", "account_id",
	"debit_amount", "credit_amount", "narration",
}

// LedgerRepo implements ledger.Repository. Transactions are append-only:
// the only permitted update is marking a transaction reversed.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new general ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Repository = (*LedgerRepo)(nil)

// Create inserts a transaction with its entries atomically.
func (r *LedgerRepo) Create(ctx context.Context, tx *ledger.GLTransaction) error {
	q := r.builder.Insert(glTransactionsTable).
		Columns(glTransactionColumns...).
		Values(
			tx.ID, tx.HospitalID, tx.BranchID,
			tx.DocumentType, tx.DocumentID, tx.EventType,
			tx.Date, tx.Description, tx.TotalDebit, tx.TotalCredit,
			tx.Posted, tx.ReversalOf, tx.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == glPostedDocumentConstraint {
				return apperror.NewDuplicate("gl_transaction", "document", tx.DocumentID.String())
			}
			return apperror.NewConflict(fmt.Sprintf("unique constraint violated: %s", pgErr.ConstraintName))
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := r.insertEntries(ctx, tx.ID, tx.Entries); err != nil {
		return err
	}

	return nil
}

func (r *LedgerRepo) insertEntries(ctx context.Context, txID id.ID, entries []ledger.GLEntry) error {
	if len(entries) == 0 {
		return nil
	}

	columns := append([]string{"transaction_id"}, glEntryColumns...)

	if r.txManager.GetTx(ctx) != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				txID, e.LineID, e.LineNo, e.AccountID,
				e.DebitAmount, e.CreditAmount, e.Narration,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, glEntriesTable, columns, rows); err != nil {
			return fmt.Errorf("copy entries: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(glEntriesTable).Columns(columns...)
	for _, e := range entries {
		q = q.Values(
			txID, e.LineID, e.LineNo, e.AccountID,
			e.DebitAmount, e.CreditAmount, e.Narration,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction with its entries.
func (r *LedgerRepo) GetByID(ctx context.Context, txID id.ID) (*ledger.GLTransaction, error) {
	q := r.transactionSelect(ctx).
		Where(squirrel.Eq{"id": txID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tx ledger.GLTransaction
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &tx, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("gl_transaction", txID.String())
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	if tx.Entries, err = r.GetEntries(ctx, txID); err != nil {
		return nil, err
	}

	return &tx, nil
}

// GetPostedByDocument finds the posted, non-reversed transaction for a document.
func (r *LedgerRepo) GetPostedByDocument(ctx context.Context, docType string, docID id.ID) (*ledger.GLTransaction, error) {
	q := r.transactionSelect(ctx).
		Where(squirrel.Eq{
			"document_type": docType,
			"document_id":   docID,
			"posted":        true,
		}).
		Where("reversal_of IS NULL").
		Where("reversed_by IS NULL").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tx ledger.GLTransaction
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &tx, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("gl_transaction", fmt.Sprintf("%s/%s", docType, docID))
		}
		return nil, fmt.Errorf("get transaction by document: %w", err)
	}

	if tx.Entries, err = r.GetEntries(ctx, tx.ID); err != nil {
		return nil, err
	}

	return &tx, nil
}

// GetEntries loads the ordered entries of one transaction.
func (r *LedgerRepo) GetEntries(ctx context.Context, txID id.ID) ([]ledger.GLEntry, error) {
	q := r.builder.Select(glEntryColumns...).
		From(glEntriesTable).
		Where(squirrel.Eq{"transaction_id": txID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.GLEntry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	return entries, nil
}

// MarkReversed records that a transaction has been undone by reversalID.
func (r *LedgerRepo) MarkReversed(ctx context.Context, txID, reversalID id.ID) error {
	q := r.builder.Update(glTransactionsTable).
		Set("reversed_by", reversalID).
		Set("reversed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": txID}).
		Where(r.hospitalScope(ctx)).
		Where("reversed_by IS NULL")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark reversed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("gl_transaction", txID.String())
	}

	return nil
}

// ListByAccount returns statement lines for one account, oldest first.
func (r *LedgerRepo) ListByAccount(ctx context.Context, accountID id.ID, f ledger.StatementFilter) ([]ledger.StatementLine, error) {
	q := r.builder.Select(
		"t.id AS transaction_id",
		"t.date", "t.event_type", "t.document_type", "t.document_id",
		"e.narration", "e.debit_amount", "e.credit_amount",
	).
		From(glEntriesTable+" e").
		Join(glTransactionsTable+" t ON t.id = e.transaction_id").
		Where(squirrel.Eq{
			"e.account_id":  accountID,
			"t.hospital_id": appctx.GetHospitalID(ctx),
			"t.posted":      true,
		}).
		OrderBy("t.date", "t.created_at", "e.line_no")

	if !f.FromDate.IsZero() {
		q = q.Where(squirrel.GtOrEq{"t.date": f.FromDate})
	}
	if !f.ToDate.IsZero() {
		q = q.Where(squirrel.LtOrEq{"t.date": f.ToDate})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []ledger.StatementLine
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select statement: %w", err)
	}

	return lines, nil
}

func (r *LedgerRepo) transactionSelect(ctx context.Context) squirrel.SelectBuilder {
	return r.builder.Select(glTransactionColumns...).
		From(glTransactionsTable).
		Where(r.hospitalScope(ctx))
}

func (r *LedgerRepo) hospitalScope(ctx context.Context) squirrel.Eq {
	return squirrel.Eq{"hospital_id": appctx.GetHospitalID(ctx)}
}
