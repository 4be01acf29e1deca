// Package entity provides core domain entities.
package entity

import (
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance (goods received)
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance (goods issued or consumed)
	RecordTypeExpense RecordType = "expense"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "PurchaseInvoice")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		CreatedAt:       time.Now().UTC(),
	}
}

// BatchMovement represents a movement in the inventory batch register.
// Tracks stock changes per medicine batch within a branch.
type BatchMovement struct {
	MovementBase

	// Dimensions
	BranchID   id.ID `db:"branch_id" json:"branchId"`
	MedicineID id.ID `db:"medicine_id" json:"medicineId"`
	BatchID    id.ID `db:"batch_id" json:"batchId"`

	// Resources
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewBatchMovement creates a new batch stock movement.
func NewBatchMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	branchID, medicineID, batchID id.ID,
	quantity types.Quantity,
) BatchMovement {
	return BatchMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		BranchID:     branchID,
		MedicineID:   medicineID,
		BatchID:      batchID,
		Quantity:     quantity,
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *BatchMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// InventoryBatch is a stock lot of one medicine in one branch.
// CurrentStock is a materialized balance maintained from movements; the
// allocator consumes batches oldest expiry first.
type InventoryBatch struct {
	ID id.ID `db:"id" json:"id"`

	// Dimensions
	BranchID   id.ID `db:"branch_id" json:"branchId"`
	MedicineID id.ID `db:"medicine_id" json:"medicineId"`

	// Lot identity
	BatchNumber string    `db:"batch_number" json:"batchNumber"`
	ExpiryDate  time.Time `db:"expiry_date" json:"expiryDate"`

	// Balance
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`

	// Pricing captured at receipt (per unit)
	PurchaseRate types.Money `db:"purchase_rate" json:"purchaseRate"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// IsExpired reports whether the batch expiry date has passed at t.
func (b *InventoryBatch) IsExpired(t time.Time) bool {
	return b.ExpiryDate.Before(t)
}
