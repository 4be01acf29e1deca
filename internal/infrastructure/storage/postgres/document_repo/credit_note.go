package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
	"rxledger/internal/domain/documents/credit_note"
	"rxledger/internal/infrastructure/storage/postgres"
)

const (
	creditNotesTable     = "doc_credit_notes"
	creditNoteLinesTable = "doc_credit_note_lines"
)

var creditNoteLineColumns = []string{
	"line_id", "line_no", "medicine_id", "quantity",
}

// CreditNoteRepo implements credit_note.Repository.
type CreditNoteRepo struct {
	*BaseDocumentRepo[*credit_note.CreditNote]
}

// NewCreditNoteRepo creates a new credit note repository.
func NewCreditNoteRepo(txManager *postgres.TxManager) *CreditNoteRepo {
	return &CreditNoteRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*credit_note.CreditNote](
			txManager,
			creditNotesTable,
			postgres.ExtractDBColumns[credit_note.CreditNote](),
			func() *credit_note.CreditNote { return &credit_note.CreditNote{} },
		),
	}
}

var _ credit_note.Repository = (*CreditNoteRepo)(nil)

// GetReturnLines retrieves return lines for a credit note.
func (r *CreditNoteRepo) GetReturnLines(ctx context.Context, docID id.ID) ([]credit_note.ReturnLine, error) {
	q := r.Builder().
		Select(creditNoteLineColumns...).
		From(creditNoteLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []credit_note.ReturnLine
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get return lines: %w", err)
	}

	return lines, nil
}

// SaveReturnLines saves return lines (delete existing + insert new).
func (r *CreditNoteRepo) SaveReturnLines(ctx context.Context, docID id.ID, lines []credit_note.ReturnLine) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + creditNoteLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	cols := append([]string{"document_id"}, creditNoteLineColumns...)
	q := r.Builder().
		Insert(creditNoteLinesTable).
		Columns(cols...)

	for _, line := range lines {
		q = q.Values(docID, line.LineID, line.LineNo, line.MedicineID, line.Quantity)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// ListByInvoice retrieves credit notes linked to an invoice.
func (r *CreditNoteRepo) ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*credit_note.CreditNote, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date", "number")

	return r.FindMany(ctx, q)
}

// List retrieves credit notes with filtering.
func (r *CreditNoteRepo) List(ctx context.Context, filter credit_note.ListFilter) (domain.ListResult[*credit_note.CreditNote], error) {
	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	if filter.InvoiceID != nil {
		q = q.Where(squirrel.Eq{"invoice_id": *filter.InvoiceID})
	}

	if filter.PaymentID != nil {
		q = q.Where(squirrel.Eq{"payment_id": *filter.PaymentID})
	}

	if filter.Reason != nil {
		q = q.Where(squirrel.Eq{"reason": *filter.Reason})
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"supplier_credit_note_number": searchPattern},
		})
	}

	return r.fetchList(ctx, q, filter.ListFilter)
}
