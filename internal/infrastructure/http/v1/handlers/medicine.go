package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	"rxledger/internal/domain/catalogs/medicine"
)

// MedicineHandler handles medicine catalog endpoints.
type MedicineHandler struct {
	*CatalogHandler[*medicine.Medicine]
	service *medicine.Service
}

// NewMedicineHandler creates a new medicine handler.
func NewMedicineHandler(base *BaseHandler, service *medicine.Service) *MedicineHandler {
	return &MedicineHandler{
		CatalogHandler: NewCatalogHandler[*medicine.Medicine](base, service, func() *medicine.Medicine {
			return &medicine.Medicine{}
		}),
		service: service,
	}
}

// FindByBarcode handles GET /by-barcode/:barcode.
func (h *MedicineHandler) FindByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	if barcode == "" {
		h.Error(c, apperror.NewValidation("barcode is required"))
		return
	}

	med, err := h.service.FindByBarcode(c.Request.Context(), barcode)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, med)
}

// ListBelowReorderLevel handles GET /below-reorder-level.
func (h *MedicineHandler) ListBelowReorderLevel(c *gin.Context) {
	meds, err := h.service.ListBelowReorderLevel(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, meds)
}
