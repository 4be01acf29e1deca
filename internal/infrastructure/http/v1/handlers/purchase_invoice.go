package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/domain/documents/purchase_invoice"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// PurchaseInvoiceHandler handles purchase invoice endpoints.
type PurchaseInvoiceHandler struct {
	*DocumentHandler[*purchase_invoice.PurchaseInvoice]
	service *purchase_invoice.Service
}

// NewPurchaseInvoiceHandler creates a new purchase invoice handler.
func NewPurchaseInvoiceHandler(base *BaseHandler, service *purchase_invoice.Service) *PurchaseInvoiceHandler {
	return &PurchaseInvoiceHandler{
		DocumentHandler: NewDocumentHandler[*purchase_invoice.PurchaseInvoice](base, service, func() *purchase_invoice.PurchaseInvoice {
			return &purchase_invoice.PurchaseInvoice{}
		}),
		service: service,
	}
}

// List handles GET /.
func (h *PurchaseInvoiceHandler) List(c *gin.Context) {
	var query dto.DocumentListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), purchase_invoice.ListFilter{
		ListFilter: query.ToFilter(),
		SupplierID: query.SupplierIDRef(),
		Posted:     query.Posted,
		DateFrom:   query.DateFrom,
		DateTo:     query.DateTo,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// Post handles POST /:id/post. Posting computes GST totals, writes batch
// movements and the GL transaction atomically.
func (h *PurchaseInvoiceHandler) Post(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Post(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "posted")
}

// Unpost handles POST /:id/unpost.
func (h *PurchaseInvoiceHandler) Unpost(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Unpost(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "unposted")
}

// GetBalance handles GET /:id/balance. Returns the settlement position
// of the invoice against approved payments and posted credit notes.
func (h *PurchaseInvoiceHandler) GetBalance(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, balance)
}
