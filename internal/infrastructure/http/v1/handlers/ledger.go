package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"rxledger/internal/domain/ledger"
)

// LedgerHandler exposes read access to the general ledger plus reversal.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service}
}

// AccountStatement handles GET /accounts/:id/statement.
func (h *LedgerHandler) AccountStatement(c *gin.Context) {
	accountID, ok := h.ParseID(c)
	if !ok {
		return
	}

	filter := ledger.StatementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("fromDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.FromDate = t
		}
	}
	if v := c.Query("toDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.ToDate = t
		}
	}

	lines, err := h.service.AccountStatement(c.Request.Context(), accountID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lines)
}

// GetByDocument handles GET /by-document/:type/:docId.
func (h *LedgerHandler) GetByDocument(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "docId")
	if !ok {
		return
	}

	tx, err := h.service.GetByDocument(c.Request.Context(), c.Param("type"), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, tx)
}

// Reverse handles POST /transactions/:id/reverse.
func (h *LedgerHandler) Reverse(c *gin.Context) {
	txID, ok := h.ParseID(c)
	if !ok {
		return
	}

	date := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			date = t
		}
	}

	reversal, err := h.service.Reverse(c.Request.Context(), txID, date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, reversal)
}
