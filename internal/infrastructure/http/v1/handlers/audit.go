package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the audit trail of an entity.
type AuditHandler struct {
	*BaseHandler
	service *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, service *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, service: service}
}

// GetHistory handles GET /:entityType/:id - newest entries first.
func (h *AuditHandler) GetHistory(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit > 500 {
		limit = 500
	}

	entries, err := h.service.GetEntityHistory(c.Request.Context(), c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}
