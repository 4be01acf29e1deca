package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/domain/filter"
)

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "hospital_id", "col1"}, func() any { return nil })

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Equal",
			item:     filter.Item{Field: "col1", Operator: filter.Equal, Value: 10},
			wantSQL:  "SELECT id, hospital_id, col1 FROM test_table WHERE col1 = $1",
			wantArgs: []any{10},
		},
		{
			name:     "NotEqual",
			item:     filter.Item{Field: "col1", Operator: filter.NotEqual, Value: 10},
			wantSQL:  "SELECT id, hospital_id, col1 FROM test_table WHERE col1 <> $1",
			wantArgs: []any{10},
		},
		{
			name:     "LessOrEqual",
			item:     filter.Item{Field: "col1", Operator: filter.LessOrEqual, Value: 5},
			wantSQL:  "SELECT id, hospital_id, col1 FROM test_table WHERE col1 <= $1",
			wantArgs: []any{5},
		},
		{
			name:     "GreaterOrEqual",
			item:     filter.Item{Field: "col1", Operator: filter.GreaterOrEqual, Value: 5},
			wantSQL:  "SELECT id, hospital_id, col1 FROM test_table WHERE col1 >= $1",
			wantArgs: []any{5},
		},
		{
			name:     "Contains",
			item:     filter.Item{Field: "col1", Operator: filter.Contains, Value: "amox"},
			wantSQL:  "SELECT id, hospital_id, col1 FROM test_table WHERE col1 ILIKE $1",
			wantArgs: []any{"%amox%"},
		},
		{
			name:    "IsNull",
			item:    filter.Item{Field: "col1", Operator: filter.IsNull},
			wantSQL: "SELECT id, hospital_id, col1 FROM test_table WHERE col1 IS NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseQ := repo.Builder().Select(repo.selectCols...).From(repo.tableName)
			q, err := repo.applyAdvancedFilters(baseQ, []filter.Item{tt.item})
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)

			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, len(tt.wantArgs), len(args))
			if len(tt.wantArgs) > 0 {
				assert.Equal(t, tt.wantArgs[0], args[0])
			}
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id"}, func() any { return nil })

	baseQ := repo.Builder().Select("id").From("test_table")
	_, err := repo.applyAdvancedFilters(baseQ, []filter.Item{
		{Field: "password_hash; DROP TABLE test_table", Operator: filter.Equal, Value: 1},
	})
	require.Error(t, err)
}

func TestApplyAdvancedFilters_RejectsUnknownOperator(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id"}, func() any { return nil })

	baseQ := repo.Builder().Select("id").From("test_table")
	_, err := repo.applyAdvancedFilters(baseQ, []filter.Item{
		{Field: "id", Operator: "between", Value: 1},
	})
	require.Error(t, err)
}
