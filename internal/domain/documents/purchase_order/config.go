package purchase_order

import "rxledger/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Orders are internal documents, so gaps from the cached allocator are fine.
	NumeratorStrategy = numerator.StrategyCached
)
