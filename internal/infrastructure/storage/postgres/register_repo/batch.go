// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/registers/batch"
	"rxledger/internal/infrastructure/storage/postgres"
)

const (
	batchMovementsTable   = "reg_batch_movements"
	inventoryBatchesTable = "reg_inventory_batches"
)

var batchMovementColumns = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "record_type",
	"branch_id", "medicine_id", "batch_id", "quantity", "created_at",
}

var inventoryBatchColumns = []string{
	"id", "branch_id", "medicine_id", "batch_number", "expiry_date",
	"current_stock", "purchase_rate", "last_movement_at", "updated_at",
}

// BatchRepo implements batch.Repository over the inventory batch register:
// an append-only movement table plus a materialized per-lot balance.
type BatchRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewBatchRepo creates a new inventory batch register repository.
func NewBatchRepo(txManager *postgres.TxManager) *BatchRepo {
	return &BatchRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ batch.Repository = (*BatchRepo)(nil)

// CreateMovements batch inserts movements.
func (r *BatchRepo) CreateMovements(ctx context.Context, movements []entity.BatchMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.BranchID, m.MedicineID, m.BatchID, m.Quantity, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, batchMovementsTable, batchMovementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert (slower). Prefer calling CreateMovements within tx.
	q := r.builder.Insert(batchMovementsTable).Columns(batchMovementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.RecordType,
			m.BranchID, m.MedicineID, m.BatchID, m.Quantity, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes movements for a document version.
func (r *BatchRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	q := r.builder.Delete(batchMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Lt{"recorder_version": beforeVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *BatchRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.BatchMovement, error) {
	q := r.builder.Select(batchMovementColumns...).
		From(batchMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.BatchMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// CreateBatch registers a new inventory lot.
func (r *BatchRepo) CreateBatch(ctx context.Context, b *entity.InventoryBatch) error {
	q := r.builder.Insert(inventoryBatchesTable).
		Columns(inventoryBatchColumns...).
		Values(
			b.ID, b.BranchID, b.MedicineID, b.BatchNumber, b.ExpiryDate,
			b.CurrentStock, b.PurchaseRate, b.LastMovementAt, b.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	return nil
}

// GetBatch returns one batch by id.
func (r *BatchRepo) GetBatch(ctx context.Context, batchID id.ID) (entity.InventoryBatch, error) {
	var b entity.InventoryBatch

	q := r.builder.Select(inventoryBatchColumns...).
		From(inventoryBatchesTable).
		Where(squirrel.Eq{"id": batchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return b, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return b, apperror.NewNotFound("inventory_batch", batchID.String())
		}
		return b, fmt.Errorf("get batch: %w", err)
	}

	return b, nil
}

// GetBatchByNumber finds a lot by branch, medicine and batch number.
func (r *BatchRepo) GetBatchByNumber(ctx context.Context, branchID, medicineID id.ID, batchNumber string) (entity.InventoryBatch, error) {
	var b entity.InventoryBatch

	q := r.builder.Select(inventoryBatchColumns...).
		From(inventoryBatchesTable).
		Where(squirrel.Eq{
			"branch_id":    branchID,
			"medicine_id":  medicineID,
			"batch_number": batchNumber,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return b, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return b, apperror.NewNotFound("inventory_batch", batchNumber)
		}
		return b, fmt.Errorf("get batch by number: %w", err)
	}

	return b, nil
}

// GetAvailableBatches returns batches with stock > 0, expiry ascending.
func (r *BatchRepo) GetAvailableBatches(ctx context.Context, branchID, medicineID id.ID) ([]entity.InventoryBatch, error) {
	return r.availableBatches(ctx, branchID, medicineID, false)
}

// GetAvailableBatchesForUpdate is GetAvailableBatches with row locks.
func (r *BatchRepo) GetAvailableBatchesForUpdate(ctx context.Context, branchID, medicineID id.ID) ([]entity.InventoryBatch, error) {
	return r.availableBatches(ctx, branchID, medicineID, true)
}

func (r *BatchRepo) availableBatches(ctx context.Context, branchID, medicineID id.ID, lock bool) ([]entity.InventoryBatch, error) {
	q := r.builder.Select(inventoryBatchColumns...).
		From(inventoryBatchesTable).
		Where(squirrel.Eq{
			"branch_id":   branchID,
			"medicine_id": medicineID,
		}).
		Where(squirrel.Gt{"current_stock": int64(0)}).
		OrderBy("expiry_date", "batch_number")

	if lock {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []entity.InventoryBatch
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}

	return batches, nil
}

// AdjustStock applies a signed quantity delta to a batch balance.
// The balance is guarded against going negative at the database level.
func (r *BatchRepo) AdjustStock(ctx context.Context, batchID id.ID, delta types.Quantity) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET current_stock = current_stock + $2,
		    last_movement_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND current_stock + $2 >= 0
	`, inventoryBatchesTable)

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, batchID, delta)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		b, getErr := r.GetBatch(ctx, batchID)
		if getErr != nil {
			return getErr
		}
		return apperror.NewInsufficientStock(
			b.MedicineID.String(),
			delta.Neg().Float64(),
			b.CurrentStock.Float64(),
		)
	}

	return nil
}

// GetExpiringBatches returns lots expiring before the cutoff date.
func (r *BatchRepo) GetExpiringBatches(ctx context.Context, branchID id.ID, before time.Time) ([]entity.InventoryBatch, error) {
	q := r.builder.Select(inventoryBatchColumns...).
		From(inventoryBatchesTable).
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.Gt{"current_stock": int64(0)}).
		Where(squirrel.Lt{"expiry_date": before}).
		OrderBy("expiry_date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []entity.InventoryBatch
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select expiring batches: %w", err)
	}

	return batches, nil
}

// GetStockByMedicine sums available stock across batches.
func (r *BatchRepo) GetStockByMedicine(ctx context.Context, branchID, medicineID id.ID) (types.Quantity, error) {
	sql := fmt.Sprintf(`
		SELECT COALESCE(SUM(current_stock), 0)
		FROM %s
		WHERE branch_id = $1 AND medicine_id = $2
	`, inventoryBatchesTable)

	var totalScaled int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, branchID, medicineID).Scan(&totalScaled)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("sum stock: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(totalScaled), nil
}
