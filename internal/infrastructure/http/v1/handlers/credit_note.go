package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/domain/documents/credit_note"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// CreditNoteHandler handles supplier credit note endpoints.
type CreditNoteHandler struct {
	*DocumentHandler[*credit_note.CreditNote]
	service *credit_note.Service
}

// NewCreditNoteHandler creates a new credit note handler.
func NewCreditNoteHandler(base *BaseHandler, service *credit_note.Service) *CreditNoteHandler {
	return &CreditNoteHandler{
		DocumentHandler: NewDocumentHandler[*credit_note.CreditNote](base, service, func() *credit_note.CreditNote {
			return &credit_note.CreditNote{}
		}),
		service: service,
	}
}

// List handles GET /.
func (h *CreditNoteHandler) List(c *gin.Context) {
	var query dto.DocumentListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	f := credit_note.ListFilter{
		ListFilter: query.ToFilter(),
		SupplierID: query.SupplierIDRef(),
		InvoiceID:  query.InvoiceIDRef(),
		PaymentID:  query.PaymentIDRef(),
		Posted:     query.Posted,
		DateFrom:   query.DateFrom,
		DateTo:     query.DateTo,
	}
	if query.Reason != "" {
		reason := credit_note.Reason(query.Reason)
		f.Reason = &reason
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// Post handles POST /:id/post. Return credit notes also reverse stock
// for the returned batches.
func (h *CreditNoteHandler) Post(c *gin.Context) {
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
func (h *CreditNoteHandler) Unpost(c *gin.Context) {
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
