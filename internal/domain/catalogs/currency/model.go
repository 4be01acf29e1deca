// Package currency provides the Currency catalog.
// Purchases are almost always in the base currency (INR); imported
// equipment invoices occasionally arrive in foreign currency.
package currency

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

var isoCodeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency represents a monetary unit.
type Currency struct {
	entity.Catalog

	// ISOCode is the ISO 4217 alphabetic code (e.g., "INR", "USD")
	ISOCode string `db:"iso_code" json:"isoCode"`

	// Symbol is the currency symbol (e.g., "₹", "$")
	Symbol string `db:"symbol" json:"symbol"`

	// DecimalPlaces is the number of decimal places
	DecimalPlaces int `db:"decimal_places" json:"decimalPlaces"`

	// ExchangeRate is the rate to the base currency. Zero for the base
	// currency itself.
	ExchangeRate types.Money `db:"exchange_rate" json:"exchangeRate"`

	// IsBase indicates the accounting currency. Exactly one per hospital.
	IsBase bool `db:"is_base" json:"isBase"`
}

// NewCurrency creates a new Currency with required fields.
func NewCurrency(hospitalID id.ID, code, name, isoCode, symbol string) *Currency {
	return &Currency{
		Catalog:       entity.NewCatalog(hospitalID, code, name),
		ISOCode:       isoCode,
		Symbol:        symbol,
		DecimalPlaces: 2,
	}
}

// Validate implements entity.Validatable interface.
func (c *Currency) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isoCodeRE.MatchString(c.ISOCode) {
		return apperror.NewValidation("ISO code must be 3 uppercase letters").
			WithDetail("field", "isoCode").
			WithDetail("value", c.ISOCode)
	}

	if c.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if c.DecimalPlaces < 0 || c.DecimalPlaces > 8 {
		return apperror.NewValidation("decimal places must be between 0 and 8").
			WithDetail("field", "decimalPlaces")
	}

	if c.ExchangeRate.IsNegative() {
		return apperror.NewValidation("exchange rate cannot be negative").
			WithDetail("field", "exchangeRate")
	}

	if c.IsBase && !c.ExchangeRate.IsZero() {
		return apperror.NewValidation("base currency must not carry an exchange rate").
			WithDetail("field", "exchangeRate")
	}

	return nil
}

// ToBase converts an amount in this currency to the base currency.
func (c *Currency) ToBase(amount types.Money) types.Money {
	if c.IsBase || c.ExchangeRate.IsZero() {
		return amount
	}
	return amount.Mul(c.ExchangeRate)
}

// Format renders an amount with the currency symbol.
func (c *Currency) Format(amount decimal.Decimal) string {
	return c.Symbol + amount.StringFixed(int32(c.DecimalPlaces))
}
