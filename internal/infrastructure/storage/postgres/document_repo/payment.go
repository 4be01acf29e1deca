package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
	"rxledger/internal/domain/documents/payment"
	"rxledger/internal/infrastructure/storage/postgres"
)

const paymentsTable = "doc_payments"

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	*BaseDocumentRepo[*payment.Payment]
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payment.Payment](
			txManager,
			paymentsTable,
			postgres.ExtractDBColumns[payment.Payment](),
			func() *payment.Payment { return &payment.Payment{} },
		),
	}
}

var _ payment.Repository = (*PaymentRepo)(nil)

// ListByInvoice retrieves payments linked to an invoice, oldest first.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*payment.Payment, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date", "number")

	return r.FindMany(ctx, q)
}

// ListPendingApproval retrieves the approval queue, oldest submission first.
func (r *PaymentRepo) ListPendingApproval(ctx context.Context, branchID *id.ID) ([]*payment.Payment, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"status": payment.StatusPendingApproval}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("updated_at")

	if branchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *branchID})
	}

	return r.FindMany(ctx, q)
}

// List retrieves payments with filtering.
func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) (domain.ListResult[*payment.Payment], error) {
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

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
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
			squirrel.ILike{"reference": searchPattern},
		})
	}

	return r.fetchList(ctx, q, filter.ListFilter)
}
