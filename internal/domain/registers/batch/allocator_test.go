package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

func mkBatch(number string, expiry string, stock int64) entity.InventoryBatch {
	d, err := time.Parse("2006-01-02", expiry)
	if err != nil {
		panic(err)
	}
	return entity.InventoryBatch{
		ID:           id.New(),
		BatchNumber:  number,
		ExpiryDate:   d,
		CurrentStock: types.NewQuantityFromInt(stock),
	}
}

func TestAllocate_FIFOByExpiry(t *testing.T) {
	medicineID := id.New()
	batches := []entity.InventoryBatch{
		mkBatch("B2", "2025-06-01", 10),
		mkBatch("B1", "2025-01-01", 10),
	}

	alloc := Allocate(medicineID, types.NewQuantityFromInt(15), batches)

	require.Len(t, alloc.Takes, 2)
	assert.Equal(t, "B1", alloc.Takes[0].Batch.BatchNumber, "earliest expiry first")
	assert.Equal(t, types.NewQuantityFromInt(10), alloc.Takes[0].QuantityTaken)
	assert.Equal(t, "B2", alloc.Takes[1].Batch.BatchNumber)
	assert.Equal(t, types.NewQuantityFromInt(5), alloc.Takes[1].QuantityTaken)
	assert.True(t, alloc.Shortfall.IsZero())
	assert.True(t, alloc.IsComplete())
}

func TestAllocate_Shortfall(t *testing.T) {
	alloc := Allocate(id.New(), types.NewQuantityFromInt(30), []entity.InventoryBatch{
		mkBatch("B1", "2025-01-01", 10),
		mkBatch("B2", "2025-06-01", 10),
	})

	assert.Equal(t, types.NewQuantityFromInt(20), alloc.Allocated)
	assert.Equal(t, types.NewQuantityFromInt(10), alloc.Shortfall)
	assert.False(t, alloc.IsComplete())
}

func TestAllocate_ExactFit(t *testing.T) {
	alloc := Allocate(id.New(), types.NewQuantityFromInt(10), []entity.InventoryBatch{
		mkBatch("B1", "2025-01-01", 10),
	})

	assert.True(t, alloc.IsComplete())
	assert.Equal(t, types.NewQuantityFromInt(10), alloc.Allocated)
	require.Len(t, alloc.Takes, 1)
}

func TestAllocate_SkipsEmptyBatches(t *testing.T) {
	alloc := Allocate(id.New(), types.NewQuantityFromInt(5), []entity.InventoryBatch{
		mkBatch("B1", "2025-01-01", 0),
		mkBatch("B2", "2025-06-01", 10),
	})

	require.Len(t, alloc.Takes, 1)
	assert.Equal(t, "B2", alloc.Takes[0].Batch.BatchNumber)
}

func TestAllocate_TieBrokenByBatchNumber(t *testing.T) {
	batches := []entity.InventoryBatch{
		mkBatch("B9", "2025-01-01", 10),
		mkBatch("B1", "2025-01-01", 10),
	}

	first := Allocate(id.New(), types.NewQuantityFromInt(5), batches)
	require.Len(t, first.Takes, 1)
	assert.Equal(t, "B1", first.Takes[0].Batch.BatchNumber)

	// Deterministic: identical input, identical pick.
	second := Allocate(id.New(), types.NewQuantityFromInt(5), batches)
	assert.Equal(t, first.Takes[0].Batch.BatchNumber, second.Takes[0].Batch.BatchNumber)
}

func TestAllocate_NeverOverAllocates(t *testing.T) {
	needed := types.NewQuantityFromInt(7)
	alloc := Allocate(id.New(), needed, []entity.InventoryBatch{
		mkBatch("B1", "2025-01-01", 3),
		mkBatch("B2", "2025-02-01", 3),
		mkBatch("B3", "2025-03-01", 3),
	})

	var taken types.Quantity
	for _, take := range alloc.Takes {
		taken += take.QuantityTaken
	}
	assert.Equal(t, alloc.Allocated, taken)
	assert.True(t, taken <= needed)
	assert.True(t, alloc.IsComplete())
}

func TestAllocate_NonDecreasingExpiryOrder(t *testing.T) {
	alloc := Allocate(id.New(), types.NewQuantityFromInt(25), []entity.InventoryBatch{
		mkBatch("B3", "2026-03-01", 10),
		mkBatch("B1", "2025-01-01", 10),
		mkBatch("B2", "2025-06-01", 10),
	})

	for i := 1; i < len(alloc.Takes); i++ {
		prev := alloc.Takes[i-1].Batch.ExpiryDate
		cur := alloc.Takes[i].Batch.ExpiryDate
		assert.False(t, cur.Before(prev), "expiry order must be non-decreasing")
	}
}

func TestAllocate_ZeroQuantity(t *testing.T) {
	alloc := Allocate(id.New(), 0, []entity.InventoryBatch{
		mkBatch("B1", "2025-01-01", 10),
	})

	assert.Empty(t, alloc.Takes)
	assert.True(t, alloc.Allocated.IsZero())
}

func TestAllocate_DoesNotMutateInput(t *testing.T) {
	batches := []entity.InventoryBatch{
		mkBatch("B2", "2025-06-01", 10),
		mkBatch("B1", "2025-01-01", 10),
	}

	_ = Allocate(id.New(), types.NewQuantityFromInt(15), batches)

	assert.Equal(t, "B2", batches[0].BatchNumber, "input order preserved")
	assert.Equal(t, types.NewQuantityFromInt(10), batches[0].CurrentStock)
}
