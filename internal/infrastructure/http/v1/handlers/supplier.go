package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	"rxledger/internal/domain/catalogs/supplier"
)

// SupplierHandler handles supplier catalog endpoints.
type SupplierHandler struct {
	*CatalogHandler[*supplier.Supplier]
	service *supplier.Service
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return &SupplierHandler{
		CatalogHandler: NewCatalogHandler[*supplier.Supplier](base, service, func() *supplier.Supplier {
			return &supplier.Supplier{}
		}),
		service: service,
	}
}

// FindByGSTIN handles GET /by-gstin/:gstin.
func (h *SupplierHandler) FindByGSTIN(c *gin.Context) {
	gstin := c.Param("gstin")
	if gstin == "" {
		h.Error(c, apperror.NewValidation("gstin is required"))
		return
	}

	sup, err := h.service.FindByGSTIN(c.Request.Context(), gstin)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sup)
}
