// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"rxledger/internal/core/id"
	"rxledger/internal/domain"
)

// --- List Query ---

// ListQuery contains common list parameters bound from the query string.
type ListQuery struct {
	Search         string `form:"search"`
	IncludeDeleted bool   `form:"includeDeleted"`
	OrderBy        string `form:"orderBy"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
	BranchID       string `form:"branchId"`
}

// ToFilter converts the query to a domain list filter.
func (q ListQuery) ToFilter() domain.ListFilter {
	f := domain.ListFilter{
		Search:         q.Search,
		IncludeDeleted: q.IncludeDeleted,
		OrderBy:        q.OrderBy,
		Limit:          q.Limit,
		Offset:         q.Offset,
	}
	if q.Limit <= 0 {
		f.Limit = 20
	}
	if q.Limit > 500 {
		f.Limit = 500
	}
	if q.BranchID != "" {
		if branchID, err := id.Parse(q.BranchID); err == nil {
			f.BranchID = &branchID
		}
	}
	return f
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse builds a list response from a domain list result.
func NewListResponse[T any](result domain.ListResult[T]) ListResponse {
	return ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Deletion ---

// SetDeletionMarkRequest toggles the deletion mark on an entity.
type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}

// --- Workflow ---

// RejectRequest carries the rejection reason for payment workflow.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BindAccountRoleRequest binds a chart-of-accounts role to an account.
type BindAccountRoleRequest struct {
	Role      string `json:"role" binding:"required"`
	AccountID string `json:"accountId" binding:"required"`
}

// SaveApprovalRuleRequest creates or updates a payment approval rule.
type SaveApprovalRuleRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" binding:"required"`
	Expression string `json:"expression" binding:"required"`
	Priority   int    `json:"priority"`
}

// UpdateExchangeRateRequest sets the exchange rate of a currency.
type UpdateExchangeRateRequest struct {
	ISOCode string `json:"isoCode" binding:"required"`
	Rate    string `json:"rate" binding:"required"`
}
