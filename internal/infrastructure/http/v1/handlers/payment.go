package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/core/id"
	"rxledger/internal/domain/documents/payment"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles supplier payment endpoints, including the
// approval workflow (submit, approve, reject).
type PaymentHandler struct {
	*DocumentHandler[*payment.Payment]
	service *payment.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service) *PaymentHandler {
	return &PaymentHandler{
		DocumentHandler: NewDocumentHandler[*payment.Payment](base, service, func() *payment.Payment {
			return &payment.Payment{}
		}),
		service: service,
	}
}

// List handles GET /.
func (h *PaymentHandler) List(c *gin.Context) {
	var query dto.DocumentListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	f := payment.ListFilter{
		ListFilter: query.ToFilter(),
		SupplierID: query.SupplierIDRef(),
		InvoiceID:  query.InvoiceIDRef(),
		DateFrom:   query.DateFrom,
		DateTo:     query.DateTo,
	}
	if query.Status != "" {
		status := payment.Status(query.Status)
		f.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// Submit handles POST /:id/submit. Evaluates approval rules: the payment
// either posts directly or enters pending_approval.
func (h *PaymentHandler) Submit(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.Submit(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Approve handles POST /:id/approve.
func (h *PaymentHandler) Approve(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.Approve(c.Request.Context(), docID, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Reject handles POST /:id/reject.
func (h *PaymentHandler) Reject(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Reject(c.Request.Context(), docID, h.GetUserID(c), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Unpost handles POST /:id/unpost.
func (h *PaymentHandler) Unpost(c *gin.Context) {
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

// ListPendingApproval handles GET /pending-approval.
func (h *PaymentHandler) ListPendingApproval(c *gin.Context) {
	var branchID *id.ID
	if v := c.Query("branchId"); v != "" {
		if parsed, err := id.Parse(v); err == nil {
			branchID = &parsed
		}
	}

	docs, err := h.service.ListPendingApproval(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, docs)
}
