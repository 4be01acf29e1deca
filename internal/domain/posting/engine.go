package posting

import (
	"context"
	"fmt"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/registers/batch"
	"rxledger/pkg/logger"
)

// Engine applies document posting effects atomically.
// All effects of one Post call (ledger transaction, batch stock,
// document flag) commit or roll back together.
type Engine struct {
	txManager tx.Manager
	ledgerSvc *ledger.Service
	batchSvc  *batch.Service
}

// NewEngine creates a posting engine.
func NewEngine(txManager tx.Manager, ledgerSvc *ledger.Service, batchSvc *batch.Service) *Engine {
	return &Engine{
		txManager: txManager,
		ledgerSvc: ledgerSvc,
		batchSvc:  batchSvc,
	}
}

// Post records the document's movements and marks it posted.
// updateDoc persists the document itself (including the posted flag)
// inside the same transaction.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}

	newVersion := doc.GetPostedVersion() + 1

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Reposting replaces the previous iteration's stock movements.
		if doc.IsPosted() {
			if err := e.batchSvc.ReverseMovements(ctx, doc.GetID(), newVersion); err != nil {
				return fmt.Errorf("clear previous movements: %w", err)
			}
		}

		if err := e.applyStock(ctx, doc, movements, newVersion); err != nil {
			return err
		}

		if movements.Ledger != nil {
			if _, err := e.ledgerSvc.Post(ctx, movements.Ledger); err != nil {
				return fmt.Errorf("post to ledger: %w", err)
			}
		}

		doc.MarkPosted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("save document: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document posted",
		"document_type", doc.GetDocumentType(),
		"document_id", doc.GetID(),
		"posted_version", doc.GetPostedVersion())

	return nil
}

// Unpost removes the document's movements and clears the posted flag.
// The ledger side is reversed with an appended counter-transaction,
// never deleted.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"Document is not posted").
			WithDetail("document_id", doc.GetID().String())
	}

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.batchSvc.ReverseMovements(ctx, doc.GetID(), doc.GetPostedVersion()+1); err != nil {
			return fmt.Errorf("reverse movements: %w", err)
		}

		glTx, err := e.ledgerSvc.GetByDocument(ctx, doc.GetDocumentType(), doc.GetID())
		switch {
		case err == nil:
			if _, err := e.ledgerSvc.Reverse(ctx, glTx.ID, time.Now().UTC()); err != nil {
				return fmt.Errorf("reverse ledger transaction: %w", err)
			}
		case apperror.IsNotFound(err):
			// No financial effect was recorded (e.g., purchase order).
		default:
			return fmt.Errorf("lookup ledger transaction: %w", err)
		}

		doc.MarkUnposted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("save document: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document unposted",
		"document_type", doc.GetDocumentType(),
		"document_id", doc.GetID())

	return nil
}

// applyStock records incoming lots and FIFO-consumes outgoing ones,
// then records the batch movements for the new posting version.
func (e *Engine) applyStock(ctx context.Context, doc Postable, movements *MovementSet, version int) error {
	var batchMovements []entity.BatchMovement

	if len(movements.StockReceipts) > 0 {
		batchIDs, err := e.batchSvc.ReceiveStock(ctx, movements.StockReceipts)
		if err != nil {
			return fmt.Errorf("receive stock: %w", err)
		}
		for i, r := range movements.StockReceipts {
			batchMovements = append(batchMovements, entity.NewBatchMovement(
				doc.GetID(), doc.GetDocumentType(), version, doc.GetDate(),
				entity.RecordTypeReceipt,
				r.BranchID, r.MedicineID, batchIDs[i],
				r.Quantity,
			))
		}
	}

	for _, issue := range movements.StockIssues {
		alloc, err := e.batchSvc.ConsumeFIFO(ctx, issue.BranchID, issue.MedicineID, issue.Quantity)
		if err != nil {
			return fmt.Errorf("consume stock: %w", err)
		}
		if !alloc.IsComplete() {
			return apperror.NewInsufficientStock(
				issue.MedicineID.String(),
				alloc.Requested.Decimal().InexactFloat64(),
				alloc.Allocated.Decimal().InexactFloat64(),
			)
		}
		for _, take := range alloc.Takes {
			batchMovements = append(batchMovements, entity.NewBatchMovement(
				doc.GetID(), doc.GetDocumentType(), version, doc.GetDate(),
				entity.RecordTypeExpense,
				issue.BranchID, issue.MedicineID, take.Batch.ID,
				take.QuantityTaken,
			))
		}
	}

	if len(batchMovements) == 0 {
		return nil
	}
	return e.batchSvc.RecordMovements(ctx, batchMovements)
}
