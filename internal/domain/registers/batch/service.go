// Package batch provides the inventory batch register service.
package batch

import (
	"context"
	"fmt"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/pkg/logger"
)

// Service provides business operations for the batch register.
// Transactions are managed by the caller (document posting); every
// mutating method here must run inside one.
type Service struct {
	repo Repository
}

// NewService creates a new batch register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// ReceiveStock registers incoming lots from a posted purchase invoice.
// Existing lots (same branch, medicine, batch number) are topped up,
// new ones created. Returns the batch ID for each receipt, in order,
// so callers can record movements against them.
func (s *Service) ReceiveStock(ctx context.Context, receipts []StockReceipt) ([]id.ID, error) {
	batchIDs := make([]id.ID, 0, len(receipts))

	for i, r := range receipts {
		if !r.Quantity.IsPositive() {
			return nil, apperror.NewValidation(fmt.Sprintf("receipt %d: quantity must be positive", i))
		}

		existing, err := s.repo.GetBatchByNumber(ctx, r.BranchID, r.MedicineID, r.BatchNumber)
		switch {
		case err == nil:
			if err := s.repo.AdjustStock(ctx, existing.ID, r.Quantity); err != nil {
				return nil, fmt.Errorf("top up batch %s: %w", r.BatchNumber, err)
			}
			batchIDs = append(batchIDs, existing.ID)
		case apperror.IsNotFound(err):
			b := &entity.InventoryBatch{
				ID:           id.New(),
				BranchID:     r.BranchID,
				MedicineID:   r.MedicineID,
				BatchNumber:  r.BatchNumber,
				ExpiryDate:   r.ExpiryDate,
				CurrentStock: r.Quantity,
				PurchaseRate: r.PurchaseRate,
				UpdatedAt:    time.Now().UTC(),
			}
			if err := s.repo.CreateBatch(ctx, b); err != nil {
				return nil, fmt.Errorf("create batch %s: %w", r.BatchNumber, err)
			}
			batchIDs = append(batchIDs, b.ID)
		default:
			return nil, fmt.Errorf("lookup batch %s: %w", r.BatchNumber, err)
		}
	}

	logger.Info(ctx, "received stock into batches", "count", len(receipts))
	return batchIDs, nil
}

// StockReceipt is one incoming lot.
type StockReceipt struct {
	BranchID     id.ID
	MedicineID   id.ID
	BatchNumber  string
	ExpiryDate   time.Time
	Quantity     types.Quantity
	PurchaseRate types.Money
}

// ConsumeFIFO locks the available batches of a medicine, allocates the
// requested quantity oldest expiry first and applies the stock deltas.
// Must be called within a transaction. The allocation (including any
// shortfall) is returned; callers that require full fulfillment check
// IsComplete and roll back.
func (s *Service) ConsumeFIFO(ctx context.Context, branchID, medicineID id.ID, quantity types.Quantity) (Allocation, error) {
	if !quantity.IsPositive() {
		return Allocation{}, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	batches, err := s.repo.GetAvailableBatchesForUpdate(ctx, branchID, medicineID)
	if err != nil {
		return Allocation{}, fmt.Errorf("lock batches: %w", err)
	}

	alloc := Allocate(medicineID, quantity, batches)

	for _, take := range alloc.Takes {
		if err := s.repo.AdjustStock(ctx, take.Batch.ID, take.QuantityTaken.Neg()); err != nil {
			return Allocation{}, fmt.Errorf("consume batch %s: %w", take.Batch.BatchNumber, err)
		}
	}

	if !alloc.IsComplete() {
		logger.Warn(ctx, "FIFO allocation short of requested quantity",
			"medicine_id", medicineID,
			"requested", alloc.Requested.String(),
			"shortfall", alloc.Shortfall.String())
	}

	return alloc, nil
}

// RecordMovements records batch movements from a document posting.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.BatchMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded batch movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// ReverseMovements removes movements for a document (used during unposting).
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	movements, err := s.repo.GetMovementsByRecorder(ctx, recorderID)
	if err != nil {
		return fmt.Errorf("load movements: %w", err)
	}

	// Put consumed stock back / take received stock out before dropping
	// the movement rows.
	for _, m := range movements {
		if m.RecorderVersion >= beforeVersion {
			continue
		}
		if err := s.repo.AdjustStock(ctx, m.BatchID, m.SignedQuantity().Neg()); err != nil {
			return fmt.Errorf("revert stock for batch %s: %w", m.BatchID, err)
		}
	}

	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed batch movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// GetAvailability returns total sellable stock for a medicine in a branch.
func (s *Service) GetAvailability(ctx context.Context, branchID, medicineID id.ID) (types.Quantity, error) {
	return s.repo.GetStockByMedicine(ctx, branchID, medicineID)
}

// GetExpiring lists lots that expire before the cutoff.
func (s *Service) GetExpiring(ctx context.Context, branchID id.ID, before time.Time) ([]entity.InventoryBatch, error) {
	return s.repo.GetExpiringBatches(ctx, branchID, before)
}
