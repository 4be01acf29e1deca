// Package medicine provides the Medicine catalog.
// Medicines are the purchasable pharmacy items: drugs, consumables,
// surgical supplies.
package medicine

import (
	"context"

	"github.com/shopspring/decimal"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// MedicineType defines the item category.
type MedicineType string

const (
	TypeDrug       MedicineType = "drug"
	TypeConsumable MedicineType = "consumable"
	TypeSurgical   MedicineType = "surgical"
	TypeEquipment  MedicineType = "equipment"
)

// Schedule is the regulatory drug schedule.
type Schedule string

const (
	ScheduleNone Schedule = ""
	ScheduleH    Schedule = "H"
	ScheduleH1   Schedule = "H1"
	ScheduleX    Schedule = "X"
	ScheduleOTC  Schedule = "OTC"
)

// GST slabs applicable to pharmacy goods.
var validGSTRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// Medicine represents a purchasable pharmacy item.
type Medicine struct {
	entity.Catalog

	// Type defines item category
	Type MedicineType `db:"type" json:"type"`

	// GenericName is the non-proprietary drug name
	GenericName *string `db:"generic_name" json:"genericName,omitempty"`

	// ManufacturerID references the manufacturer supplier
	ManufacturerID *id.ID `db:"manufacturer_id" json:"manufacturerId,omitempty"`

	// HSNCode is the GST commodity classification code
	HSNCode string `db:"hsn_code" json:"hsnCode"`

	// GSTRate is the default GST percentage for this item
	GSTRate types.Percent `db:"gst_rate" json:"gstRate"`

	// Unit is the stocking unit (strip, vial, bottle, piece)
	Unit string `db:"unit" json:"unit"`

	// ConversionFactor is the number of dispensing units per stocking
	// unit (e.g., 10 tablets per strip). Display and dispensing only,
	// never part of amount math.
	ConversionFactor int `db:"conversion_factor" json:"conversionFactor"`

	// Schedule is the regulatory drug schedule
	Schedule Schedule `db:"schedule" json:"schedule"`

	// ReorderLevel triggers low-stock reporting when current stock
	// falls below it
	ReorderLevel types.Quantity `db:"reorder_level" json:"reorderLevel"`

	// TrackBatch indicates batch/expiry tracking. On for drugs.
	TrackBatch bool `db:"track_batch" json:"trackBatch"`

	// Barcode is the item barcode
	Barcode *string `db:"barcode" json:"barcode,omitempty"`
}

// NewMedicine creates a new Medicine with required fields.
func NewMedicine(hospitalID id.ID, code, name string, medType MedicineType) *Medicine {
	return &Medicine{
		Catalog:          entity.NewCatalog(hospitalID, code, name),
		Type:             medType,
		GSTRate:          decimal.NewFromInt(12),
		Unit:             "piece",
		ConversionFactor: 1,
		TrackBatch:       medType == TypeDrug,
	}
}

// Validate implements entity.Validatable interface.
func (m *Medicine) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidMedicineType(m.Type) {
		return apperror.NewValidation("invalid medicine type").
			WithDetail("field", "type").
			WithDetail("value", string(m.Type))
	}

	if !isValidGSTRate(m.GSTRate) {
		return apperror.NewValidation("GST rate must be one of 0, 5, 12, 18, 28").
			WithDetail("field", "gstRate").
			WithDetail("value", m.GSTRate.String())
	}

	if !isValidSchedule(m.Schedule) {
		return apperror.NewValidation("invalid drug schedule").
			WithDetail("field", "schedule").
			WithDetail("value", string(m.Schedule))
	}

	if m.ConversionFactor < 1 {
		return apperror.NewValidation("conversion factor must be at least 1").
			WithDetail("field", "conversionFactor")
	}

	if m.ReorderLevel < 0 {
		return apperror.NewValidation("reorder level cannot be negative").
			WithDetail("field", "reorderLevel")
	}

	if m.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	return nil
}

// IsScheduled returns true for restricted-schedule drugs.
func (m *Medicine) IsScheduled() bool {
	return m.Schedule == ScheduleH || m.Schedule == ScheduleH1 || m.Schedule == ScheduleX
}

func isValidMedicineType(t MedicineType) bool {
	switch t {
	case TypeDrug, TypeConsumable, TypeSurgical, TypeEquipment:
		return true
	}
	return false
}

func isValidSchedule(s Schedule) bool {
	switch s {
	case ScheduleNone, ScheduleH, ScheduleH1, ScheduleX, ScheduleOTC:
		return true
	}
	return false
}

func isValidGSTRate(rate types.Percent) bool {
	for _, r := range validGSTRates {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}
