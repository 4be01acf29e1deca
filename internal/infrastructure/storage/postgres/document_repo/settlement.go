package document_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	appctx "rxledger/internal/core/context"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/documents/payment"
	"rxledger/internal/domain/documents/purchase_invoice"
	"rxledger/internal/domain/reconcile"
	"rxledger/internal/infrastructure/storage/postgres"
)

// SettlementRepo reads the settlement legs of an invoice: its payments
// and the credit notes linked to it. Kept separate from the document
// repos so the balance calculation sees one flat read model.
type SettlementRepo struct {
	txManager *postgres.TxManager
}

// NewSettlementRepo creates a new settlement reader.
func NewSettlementRepo(txManager *postgres.TxManager) *SettlementRepo {
	return &SettlementRepo{txManager: txManager}
}

var _ purchase_invoice.SettlementReader = (*SettlementRepo)(nil)

// ApprovedPayments lists approved payments linked to the invoice.
func (r *SettlementRepo) ApprovedPayments(ctx context.Context, invoiceID id.ID) ([]reconcile.PaymentView, error) {
	sql := fmt.Sprintf(`
		SELECT id, amount, (status = '%s') AS approved
		FROM %s
		WHERE hospital_id = $1
		  AND invoice_id = $2
		  AND deletion_mark = false
		  AND status = '%s'
		ORDER BY date, number
	`, payment.StatusApproved, paymentsTable, payment.StatusApproved)

	querier := r.txManager.GetQuerier(ctx)

	var views []reconcile.PaymentView
	if err := pgxscan.Select(ctx, querier, &views, sql, appctx.GetHospitalID(ctx), invoiceID); err != nil {
		return nil, fmt.Errorf("approved payments: %w", err)
	}

	return views, nil
}

// CreditNotes lists posted credit notes settling the invoice, whether
// linked to it directly or through one of its payments.
func (r *SettlementRepo) CreditNotes(ctx context.Context, invoiceID id.ID) ([]reconcile.CreditNoteView, error) {
	sql := fmt.Sprintf(`
		SELECT cn.id, cn.credit_amount
		FROM %s cn
		WHERE cn.hospital_id = $1
		  AND cn.deletion_mark = false
		  AND cn.posted = true
		  AND (cn.invoice_id = $2
		       OR cn.payment_id IN (
		           SELECT p.id FROM %s p
		           WHERE p.hospital_id = $1
		             AND p.invoice_id = $2
		             AND p.deletion_mark = false
		       ))
		ORDER BY cn.date, cn.number
	`, creditNotesTable, paymentsTable)

	querier := r.txManager.GetQuerier(ctx)

	var views []reconcile.CreditNoteView
	if err := pgxscan.Select(ctx, querier, &views, sql, appctx.GetHospitalID(ctx), invoiceID); err != nil {
		return nil, fmt.Errorf("credit notes: %w", err)
	}

	return views, nil
}
