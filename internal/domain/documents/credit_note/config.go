package credit_note

import "rxledger/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	NumeratorStrategy = numerator.StrategyStrict
)
