package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/domain"
	"rxledger/internal/domain/documents/purchase_invoice"
	"rxledger/internal/infrastructure/storage/postgres"
)

const (
	purchaseInvoicesTable     = "doc_purchase_invoices"
	purchaseInvoiceLinesTable = "doc_purchase_invoice_lines"
)

var purchaseInvoiceLineColumns = []string{
	"line_id", "line_no", "medicine_id", "batch_number", "expiry_date",
	"quantity", "free_quantity", "unit_rate", "discount_percent", "gst_rate",
	"is_free", "conversion_factor", "base_amount", "discount_amount", "taxable_amount",
	"cgst_amount", "sgst_amount", "igst_amount", "line_total",
}

// PurchaseInvoiceRepo implements purchase_invoice.Repository.
type PurchaseInvoiceRepo struct {
	*BaseDocumentRepo[*purchase_invoice.PurchaseInvoice]
}

// NewPurchaseInvoiceRepo creates a new purchase invoice repository.
func NewPurchaseInvoiceRepo(txManager *postgres.TxManager) *PurchaseInvoiceRepo {
	return &PurchaseInvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*purchase_invoice.PurchaseInvoice](
			txManager,
			purchaseInvoicesTable,
			postgres.ExtractDBColumns[purchase_invoice.PurchaseInvoice](),
			func() *purchase_invoice.PurchaseInvoice { return &purchase_invoice.PurchaseInvoice{} },
		),
	}
}

var _ purchase_invoice.Repository = (*PurchaseInvoiceRepo)(nil)

// GetLines retrieves lines for a purchase invoice.
func (r *PurchaseInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase_invoice.Line, error) {
	q := r.Builder().
		Select(purchaseInvoiceLineColumns...).
		From(purchaseInvoiceLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase_invoice.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a purchase invoice (delete existing + insert new).
func (r *PurchaseInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase_invoice.Line) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + purchaseInvoiceLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	cols := append([]string{"document_id"}, purchaseInvoiceLineColumns...)
	q := r.Builder().
		Insert(purchaseInvoiceLinesTable).
		Columns(cols...)

	for _, line := range lines {
		q = q.Values(
			docID, line.LineID, line.LineNo, line.MedicineID, line.BatchNumber, line.ExpiryDate,
			line.Quantity, line.FreeQuantity, line.UnitRate, line.DiscountPercent, line.GSTRate,
			line.IsFree, line.ConversionFactor, line.BaseAmount, line.DiscountAmount, line.TaxableAmount,
			line.CGSTAmount, line.SGSTAmount, line.IGSTAmount, line.LineTotal,
		)
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

// FindBySupplierInvoice detects duplicate supplier references.
func (r *PurchaseInvoiceRepo) FindBySupplierInvoice(ctx context.Context, supplierID id.ID, supplierInvoiceNumber string) (*purchase_invoice.PurchaseInvoice, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		Where(squirrel.Eq{"supplier_invoice_number": supplierInvoiceNumber}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	inv, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase_invoice", supplierInvoiceNumber)
		}
		return nil, err
	}
	return inv, nil
}

// List retrieves purchase invoices with filtering.
func (r *PurchaseInvoiceRepo) List(ctx context.Context, filter purchase_invoice.ListFilter) (domain.ListResult[*purchase_invoice.PurchaseInvoice], error) {
	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
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
			squirrel.ILike{"supplier_invoice_number": searchPattern},
		})
	}

	return r.fetchList(ctx, q, filter.ListFilter)
}
