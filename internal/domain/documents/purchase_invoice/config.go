package purchase_invoice

import "rxledger/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Invoices are statutory documents; gaps in numbering are not acceptable.
	NumeratorStrategy = numerator.StrategyStrict
)
