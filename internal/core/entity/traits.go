package entity

import (
	"context"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// CurrencyAware is a trait for entities that have a currency dimension.
// Used for composition in documents like PurchaseInvoice, Payment.
type CurrencyAware struct {
	// CurrencyID is the primary currency for financial operations in this entity
	CurrencyID id.ID `db:"currency_id" json:"currencyId"`

	// ExchangeRate converts document totals into the base currency.
	// Applied once at the document-total level, never inside line tax math.
	ExchangeRate types.Money `db:"exchange_rate" json:"exchangeRate"`
}

// ValidateCurrency ensures a currency is set.
func (c *CurrencyAware) ValidateCurrency(ctx context.Context) error {
	if id.IsNil(c.CurrencyID) {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currencyId")
	}
	return nil
}

// GetCurrencyID returns the currency ID (useful for interfaces).
func (c *CurrencyAware) GetCurrencyID() id.ID {
	return c.CurrencyID
}

// ToBase converts a document-level amount into the base currency.
// A zero rate means the document is already in base currency.
func (c *CurrencyAware) ToBase(amount types.Money) types.Money {
	if c.ExchangeRate.IsZero() {
		return amount
	}
	return amount.Mul(c.ExchangeRate)
}

// ICurrencyAware is an interface for any document that has a currency.
type ICurrencyAware interface {
	GetCurrencyID() id.ID
	ValidateCurrency(ctx context.Context) error
}
