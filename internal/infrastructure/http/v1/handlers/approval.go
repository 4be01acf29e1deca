package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	appctx "rxledger/internal/core/context"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/approval"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// ApprovalRuleHandler manages payment approval rules.
type ApprovalRuleHandler struct {
	*BaseHandler
	provider *approval.Provider
}

// NewApprovalRuleHandler creates a new approval rule handler.
func NewApprovalRuleHandler(base *BaseHandler, provider *approval.Provider) *ApprovalRuleHandler {
	return &ApprovalRuleHandler{BaseHandler: base, provider: provider}
}

// List handles GET / - list the hospital's active rules.
func (h *ApprovalRuleHandler) List(c *gin.Context) {
	hospitalID, err := h.hospitalID(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	rules, err := h.provider.ListRules(c.Request.Context(), hospitalID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rules)
}

// Save handles POST / - create or update a rule.
func (h *ApprovalRuleHandler) Save(c *gin.Context) {
	var req dto.SaveApprovalRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	hospitalID, err := h.hospitalID(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	rule := &approval.RuleRecord{
		HospitalID: hospitalID,
		Name:       req.Name,
		Expression: req.Expression,
		Priority:   req.Priority,
	}
	if req.ID != "" {
		ruleID, err := id.Parse(req.ID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid rule id"))
			return
		}
		rule.ID = ruleID
	}

	if err := h.provider.SaveRule(c.Request.Context(), rule); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rule)
}

// Delete handles DELETE /:id.
func (h *ApprovalRuleHandler) Delete(c *gin.Context) {
	ruleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	hospitalID, err := h.hospitalID(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.provider.DeleteRule(c.Request.Context(), hospitalID, ruleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ApprovalRuleHandler) hospitalID(c *gin.Context) (id.ID, error) {
	raw := appctx.GetHospitalID(c.Request.Context())
	if raw == "" {
		return id.Nil(), apperror.NewUnauthorized("hospital context missing")
	}
	hospitalID, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewUnauthorized("invalid hospital context")
	}
	return hospitalID, nil
}
