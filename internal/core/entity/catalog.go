package entity

import (
	"context"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
)

// Catalog is the base type for reference data.
// Examples: Supplier, Medicine, Account, Branch, Currency.
type Catalog struct {
	BaseCatalog

	// Code is a human-readable identifier (unique within hospital)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Active marks whether the entry may be used on new documents
	Active bool `db:"active" json:"active"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(hospitalID id.ID, code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(hospitalID),
		Code:        code,
		Name:        name,
		Active:      true,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code can be auto-generated, so it's optional at creation
	// but required at save time

	return nil
}

// Deactivate marks the entry as unusable for new documents.
func (c *Catalog) Deactivate() {
	c.Active = false
}
