package medicine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/id"
)

func TestMedicine_Defaults(t *testing.T) {
	m := NewMedicine(id.New(), "MED-001", "Paracetamol 500mg", TypeDrug)

	assert.True(t, m.GSTRate.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "piece", m.Unit)
	assert.True(t, m.TrackBatch, "drugs track batches by default")

	c := NewMedicine(id.New(), "MED-002", "Cotton Roll", TypeConsumable)
	assert.False(t, c.TrackBatch)
}

func TestMedicine_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		m := NewMedicine(id.New(), "MED-001", "Paracetamol 500mg", TypeDrug)
		m.HSNCode = "3004"
		require.NoError(t, m.Validate(ctx))
	})

	t.Run("off-slab GST rate", func(t *testing.T) {
		m := NewMedicine(id.New(), "MED-001", "Paracetamol", TypeDrug)
		m.GSTRate = decimal.NewFromInt(15)
		require.Error(t, m.Validate(ctx))
	})

	t.Run("invalid type", func(t *testing.T) {
		m := NewMedicine(id.New(), "MED-001", "Something", MedicineType("implant"))
		require.Error(t, m.Validate(ctx))
	})

	t.Run("invalid schedule", func(t *testing.T) {
		m := NewMedicine(id.New(), "MED-001", "Alprazolam", TypeDrug)
		m.Schedule = Schedule("H2")
		require.Error(t, m.Validate(ctx))
	})

	t.Run("zero conversion factor", func(t *testing.T) {
		m := NewMedicine(id.New(), "MED-001", "Strip Pack", TypeDrug)
		m.ConversionFactor = 0
		require.Error(t, m.Validate(ctx))
	})

	t.Run("missing unit", func(t *testing.T) {
		m := NewMedicine(id.New(), "MED-001", "Paracetamol", TypeDrug)
		m.Unit = ""
		require.Error(t, m.Validate(ctx))
	})
}

func TestMedicine_IsScheduled(t *testing.T) {
	m := NewMedicine(id.New(), "MED-001", "Alprazolam 0.5mg", TypeDrug)
	assert.False(t, m.IsScheduled())

	for _, s := range []Schedule{ScheduleH, ScheduleH1, ScheduleX} {
		m.Schedule = s
		assert.True(t, m.IsScheduled(), "schedule %s", s)
	}

	m.Schedule = ScheduleOTC
	assert.False(t, m.IsScheduled())
}
