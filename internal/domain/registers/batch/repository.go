package batch

import (
	"context"
	"time"

	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// Repository defines operations for the inventory batch register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.BatchMovement) error

	// DeleteMovementsByRecorder removes all movements for a document version.
	// Used during unposting or re-posting.
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.BatchMovement, error)

	// Batch operations

	// CreateBatch registers a new inventory lot (during invoice posting)
	CreateBatch(ctx context.Context, b *entity.InventoryBatch) error

	// GetBatch returns one batch by id
	GetBatch(ctx context.Context, batchID id.ID) (entity.InventoryBatch, error)

	// GetBatchByNumber finds a lot by branch, medicine and batch number
	GetBatchByNumber(ctx context.Context, branchID, medicineID id.ID, batchNumber string) (entity.InventoryBatch, error)

	// GetAvailableBatches returns batches with stock > 0 for a medicine in
	// a branch, ordered by expiry ascending.
	GetAvailableBatches(ctx context.Context, branchID, medicineID id.ID) ([]entity.InventoryBatch, error)

	// GetAvailableBatchesForUpdate is GetAvailableBatches with row locks
	// (SELECT ... FOR UPDATE) for allocation under concurrency.
	GetAvailableBatchesForUpdate(ctx context.Context, branchID, medicineID id.ID) ([]entity.InventoryBatch, error)

	// AdjustStock applies a signed quantity delta to a batch balance
	AdjustStock(ctx context.Context, batchID id.ID, delta types.Quantity) error

	// Reporting

	// GetExpiringBatches returns lots expiring before the cutoff date
	GetExpiringBatches(ctx context.Context, branchID id.ID, before time.Time) ([]entity.InventoryBatch, error)

	// GetStockByMedicine sums available stock across batches
	GetStockByMedicine(ctx context.Context, branchID, medicineID id.ID) (types.Quantity, error)
}
