package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
)

type mockCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

type mockDocument struct {
	entity.BaseDocument
	Number string `db:"number" json:"number"`
	Status string `db:"-" json:"status"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{
		"id", "hospital_id", "deletion_mark", "version", "code", "name",
	}
	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestExtractDBColumns_SkipsIgnored(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	assert.Contains(t, cols, "number")
	assert.Contains(t, cols, "created_at")
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "status")
}

func TestStructToMap(t *testing.T) {
	hospitalID := id.New()
	cat := mockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				HospitalID:   hospitalID,
				DeletionMark: true,
				Version:      5,
			},
		},
		Code: "PARA-500",
		Name: "Paracetamol 500mg",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, hospitalID, m["hospital_id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "PARA-500", m["code"])
	assert.Equal(t, "Paracetamol 500mg", m["name"])
}

func TestStructToMap_EmbeddedDocument(t *testing.T) {
	now := time.Now().UTC()
	doc := mockDocument{
		BaseDocument: entity.BaseDocument{
			BaseEntity: entity.BaseEntity{ID: id.New(), Version: 1},
			CreatedAt:  now,
			CreatedBy:  "user-1",
		},
		Number: "PINV-2026-00001",
		Status: "draft",
	}

	m := StructToMap(&doc)

	assert.Equal(t, "PINV-2026-00001", m["number"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "user-1", m["created_by"])
	assert.NotContains(t, m, "status")
}
