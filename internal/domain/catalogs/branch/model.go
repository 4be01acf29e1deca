// Package branch provides the Branch catalog.
// Branches are the hospital's pharmacy locations that receive stock and
// raise purchase documents.
package branch

import (
	"context"
	"regexp"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
)

var stateCodeRE = regexp.MustCompile(`^[0-9]{2}$`)

// BranchType defines the branch category.
type BranchType string

const (
	TypeMainPharmacy BranchType = "main_pharmacy"
	TypeWardPharmacy BranchType = "ward_pharmacy"
	TypeOTStore      BranchType = "ot_store"
	TypeCentralStore BranchType = "central_store"
)

// Branch represents one pharmacy location of the hospital.
type Branch struct {
	entity.Catalog

	// Type defines the branch category
	Type BranchType `db:"type" json:"type"`

	// StateCode is the 2-digit GST state code of the branch. Compared
	// with supplier state codes to pick IGST vs CGST+SGST.
	StateCode string `db:"state_code" json:"stateCode"`

	// GSTIN is the branch GST registration, when registered separately
	GSTIN *string `db:"gstin" json:"gstin,omitempty"`

	// DrugLicenseNumber is the branch drug purchase license
	DrugLicenseNumber *string `db:"drug_license_number" json:"drugLicenseNumber,omitempty"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	Phone *string `db:"phone" json:"phone,omitempty"`

	// IsDefault indicates the default branch for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewBranch creates a new Branch with required fields.
func NewBranch(hospitalID id.ID, code, name string, branchType BranchType) *Branch {
	return &Branch{
		Catalog: entity.NewCatalog(hospitalID, code, name),
		Type:    branchType,
	}
}

// Validate implements entity.Validatable interface.
func (b *Branch) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidBranchType(b.Type) {
		return apperror.NewValidation("invalid branch type").
			WithDetail("field", "type").
			WithDetail("value", string(b.Type))
	}

	if b.StateCode == "" || !stateCodeRE.MatchString(b.StateCode) {
		return apperror.NewValidation("state code must be 2 digits").
			WithDetail("field", "stateCode")
	}

	return nil
}

func isValidBranchType(t BranchType) bool {
	switch t {
	case TypeMainPharmacy, TypeWardPharmacy, TypeOTStore, TypeCentralStore:
		return true
	}
	return false
}
