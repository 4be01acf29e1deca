// Package batch provides the inventory batch register: per-lot stock
// balances consumed oldest expiry first.
package batch

import (
	"sort"

	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// BatchTake is one batch consumed by an allocation.
type BatchTake struct {
	Batch         entity.InventoryBatch `json:"batch"`
	QuantityTaken types.Quantity        `json:"quantityTaken"`
}

// Allocation is the result of a FIFO pick over available batches.
// Shortfall is reported, never raised: the caller decides whether a
// partial fulfillment is acceptable.
type Allocation struct {
	MedicineID id.ID          `json:"medicineId"`
	Requested  types.Quantity `json:"requested"`
	Allocated  types.Quantity `json:"allocated"`
	Shortfall  types.Quantity `json:"shortfall"`
	Takes      []BatchTake    `json:"takes"`
}

// IsComplete reports whether the full requested quantity was satisfied.
func (a Allocation) IsComplete() bool {
	return a.Shortfall.IsZero()
}

// Allocate greedily consumes batches in ascending expiry order until the
// requested quantity is satisfied or stock runs out. Batches with equal
// expiry are taken in batch-number order so identical inputs always
// produce identical allocations. Batches without stock are skipped.
//
// Pure: the input slice and its batches are not mutated.
func Allocate(medicineID id.ID, quantityNeeded types.Quantity, available []entity.InventoryBatch) Allocation {
	alloc := Allocation{
		MedicineID: medicineID,
		Requested:  quantityNeeded,
	}
	if !quantityNeeded.IsPositive() {
		return alloc
	}

	sorted := make([]entity.InventoryBatch, len(available))
	copy(sorted, available)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExpiryDate.Equal(sorted[j].ExpiryDate) {
			return sorted[i].ExpiryDate.Before(sorted[j].ExpiryDate)
		}
		return sorted[i].BatchNumber < sorted[j].BatchNumber
	})

	remaining := quantityNeeded
	for _, b := range sorted {
		if remaining.IsZero() {
			break
		}
		if !b.CurrentStock.IsPositive() {
			continue
		}

		take := remaining.Min(b.CurrentStock)
		alloc.Takes = append(alloc.Takes, BatchTake{
			Batch:         b,
			QuantityTaken: take,
		})
		alloc.Allocated += take
		remaining -= take
	}

	alloc.Shortfall = remaining
	return alloc
}
