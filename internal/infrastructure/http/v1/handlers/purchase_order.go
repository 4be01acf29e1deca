package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/domain/documents/purchase_order"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles purchase order endpoints.
type PurchaseOrderHandler struct {
	*DocumentHandler[*purchase_order.PurchaseOrder]
	service *purchase_order.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase_order.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		DocumentHandler: NewDocumentHandler[*purchase_order.PurchaseOrder](base, service, func() *purchase_order.PurchaseOrder {
			return &purchase_order.PurchaseOrder{}
		}),
		service: service,
	}
}

// List handles GET /.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var query dto.DocumentListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	f := purchase_order.ListFilter{
		ListFilter: query.ToFilter(),
		SupplierID: query.SupplierIDRef(),
		DateFrom:   query.DateFrom,
		DateTo:     query.DateTo,
	}
	if query.Status != "" {
		status := purchase_order.Status(query.Status)
		f.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// MarkReceived handles POST /:id/receive.
func (h *PurchaseOrderHandler) MarkReceived(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.MarkReceived(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "received")
}

// Cancel handles POST /:id/cancel.
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "cancelled")
}
