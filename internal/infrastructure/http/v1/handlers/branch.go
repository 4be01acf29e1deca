package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/domain/catalogs/branch"
)

// BranchHandler handles branch catalog endpoints.
type BranchHandler struct {
	*CatalogHandler[*branch.Branch]
	service *branch.Service
}

// NewBranchHandler creates a new branch handler.
func NewBranchHandler(base *BaseHandler, service *branch.Service) *BranchHandler {
	return &BranchHandler{
		CatalogHandler: NewCatalogHandler[*branch.Branch](base, service, func() *branch.Branch {
			return &branch.Branch{}
		}),
		service: service,
	}
}

// GetDefault handles GET /default.
func (h *BranchHandler) GetDefault(c *gin.Context) {
	b, err := h.service.GetDefault(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, b)
}
