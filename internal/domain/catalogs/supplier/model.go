// Package supplier provides the Supplier catalog.
// Suppliers are pharmaceutical distributors and manufacturers the
// hospital purchases from.
package supplier

import (
	"context"
	"regexp"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
)

// Pre-compiled regex patterns for validation
var (
	gstinRE = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panRE   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,14}$`)
)

// SupplierType defines the kind of supply relationship.
type SupplierType string

const (
	TypeDistributor  SupplierType = "distributor"
	TypeManufacturer SupplierType = "manufacturer"
	TypeStockist     SupplierType = "stockist"
	TypeOther        SupplierType = "other"
)

// Supplier represents a purchasing counterparty.
type Supplier struct {
	entity.Catalog

	// Type defines the supply relationship
	Type SupplierType `db:"type" json:"type"`

	// LegalName is the registered business name
	LegalName *string `db:"legal_name" json:"legalName,omitempty"`

	// GSTIN is the 15-character GST registration number.
	// Empty for unregistered suppliers.
	GSTIN *string `db:"gstin" json:"gstin,omitempty"`

	// PAN is the 10-character income tax number
	PAN *string `db:"pan" json:"pan,omitempty"`

	// StateCode is the 2-digit GST state code. Derived from GSTIN when
	// registered, entered manually otherwise. Drives interstate detection.
	StateCode string `db:"state_code" json:"stateCode"`

	// DrugLicenseNumber is the supplier's drug sale license
	DrugLicenseNumber *string `db:"drug_license_number" json:"drugLicenseNumber,omitempty"`

	// PaymentTermDays is the credit period granted by the supplier
	PaymentTermDays int `db:"payment_term_days" json:"paymentTermDays"`

	// Contact details
	Address       *string `db:"address" json:"address,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Email         *string `db:"email" json:"email,omitempty"`
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(hospitalID id.ID, code, name string, supplierType SupplierType) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(hospitalID, code, name),
		Type:    supplierType,
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidSupplierType(s.Type) {
		return apperror.NewValidation("invalid supplier type").
			WithDetail("field", "type").
			WithDetail("value", string(s.Type))
	}

	if s.GSTIN != nil && *s.GSTIN != "" {
		if !gstinRE.MatchString(*s.GSTIN) {
			return apperror.NewValidation("invalid GSTIN format").
				WithDetail("field", "gstin")
		}
		// GSTIN embeds the state code; a mismatch means one of them is wrong.
		if s.StateCode != "" && s.StateCode != (*s.GSTIN)[:2] {
			return apperror.NewValidation("state code does not match GSTIN").
				WithDetail("field", "stateCode").
				WithDetail("gstin", *s.GSTIN)
		}
	}

	if s.PAN != nil && *s.PAN != "" && !panRE.MatchString(*s.PAN) {
		return apperror.NewValidation("invalid PAN format").
			WithDetail("field", "pan")
	}

	if s.Email != nil && *s.Email != "" && !emailRE.MatchString(*s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if s.Phone != nil && *s.Phone != "" && !phoneRE.MatchString(*s.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	if s.PaymentTermDays < 0 {
		return apperror.NewValidation("payment term cannot be negative").
			WithDetail("field", "paymentTermDays")
	}

	return nil
}

// IsRegistered returns true if the supplier has a GSTIN.
func (s *Supplier) IsRegistered() bool {
	return s.GSTIN != nil && *s.GSTIN != ""
}

// EffectiveStateCode returns the state code, preferring the one embedded
// in the GSTIN for registered suppliers.
func (s *Supplier) EffectiveStateCode() string {
	if s.IsRegistered() {
		return (*s.GSTIN)[:2]
	}
	return s.StateCode
}

// IsInterstate reports whether supply from this supplier to the given
// hospital state attracts IGST instead of CGST+SGST.
func (s *Supplier) IsInterstate(hospitalStateCode string) bool {
	sc := s.EffectiveStateCode()
	if sc == "" || hospitalStateCode == "" {
		return false
	}
	return sc != hospitalStateCode
}

func isValidSupplierType(t SupplierType) bool {
	switch t {
	case TypeDistributor, TypeManufacturer, TypeStockist, TypeOther:
		return true
	}
	return false
}
