package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessRule(t *testing.T) {
	err := NewBusinessRule(CodeBusinessRule, "system roles cannot be modified")

	assert.Equal(t, CodeBusinessRule, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "BUSINESS_RULE_VIOLATION: system roles cannot be modified", err.Error())
}

func TestNewBusinessRule_CustomCode(t *testing.T) {
	err := NewBusinessRule(CodeDocumentPosted, "document is already posted")

	assert.Equal(t, CodeDocumentPosted, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternal(cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by")
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewValidation("quantity must be positive").
		WithDetail("field", "quantity").
		WithDetail("lineNo", 3)

	assert.Equal(t, "quantity", err.Details["field"])
	assert.Equal(t, 3, err.Details["lineNo"])
}
