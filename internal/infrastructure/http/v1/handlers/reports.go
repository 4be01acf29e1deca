package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/reports"
)

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// GetSupplierOutstanding handles GET /supplier-outstanding.
func (h *ReportsHandler) GetSupplierOutstanding(c *gin.Context) {
	filter := reports.SupplierOutstandingFilter{
		SupplierIDs:    parseIDList(c.Query("supplierIds")),
		ExcludeSettled: c.Query("excludeSettled") == "true",
		Limit:          h.ParseIntQuery(c, "limit", 0),
		Offset:         h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("asOfDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.AsOfDate = &t
		}
	}

	report, err := h.service.GetSupplierOutstanding(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetGSTInputSummary handles GET /gst-input.
func (h *ReportsHandler) GetGSTInputSummary(c *gin.Context) {
	fromDate, err := time.Parse("2006-01-02", c.Query("fromDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("fromDate is required (YYYY-MM-DD)"))
		return
	}
	toDate, err := time.Parse("2006-01-02", c.Query("toDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("toDate is required (YYYY-MM-DD)"))
		return
	}

	filter := reports.GSTInputFilter{
		FromDate:    fromDate,
		ToDate:      toDate,
		SupplierIDs: parseIDList(c.Query("supplierIds")),
		GroupByHSN:  c.Query("groupByHsn") == "true",
		GroupByRate: c.Query("groupByRate") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 0),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("hsnCodes"); v != "" {
		filter.HSNCodes = strings.Split(v, ",")
	}

	report, err := h.service.GetGSTInputSummary(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetExpiringStock handles GET /expiring-stock.
func (h *ReportsHandler) GetExpiringStock(c *gin.Context) {
	filter := reports.ExpiringStockFilter{
		WithinDays:     h.ParseIntQuery(c, "withinDays", 90),
		IncludeExpired: c.Query("includeExpired") == "true",
		BranchIDs:      parseIDList(c.Query("branchIds")),
		MedicineIDs:    parseIDList(c.Query("medicineIds")),
		Limit:          h.ParseIntQuery(c, "limit", 0),
		Offset:         h.ParseIntQuery(c, "offset", 0),
	}

	report, err := h.service.GetExpiringStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetDocumentJournal handles GET /document-journal.
func (h *ReportsHandler) GetDocumentJournal(c *gin.Context) {
	filter := h.journalFilter(c)

	journal, err := h.service.GetDocumentJournal(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, journal)
}

func (h *ReportsHandler) journalFilter(c *gin.Context) reports.DocumentJournalFilter {
	filter := reports.DocumentJournalFilter{
		NumberContains: c.Query("number"),
		SupplierIDs:    parseIDList(c.Query("supplierIds")),
		BranchIDs:      parseIDList(c.Query("branchIds")),
		SortBy:         c.Query("sortBy"),
		SortOrder:      c.Query("sortOrder"),
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("types"); v != "" {
		filter.DocumentTypes = strings.Split(v, ",")
	}
	if v := c.Query("fromDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.FromDate = &t
		}
	}
	if v := c.Query("toDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.ToDate = &t
		}
	}
	if v := c.Query("posted"); v != "" {
		posted := v == "true"
		filter.Posted = &posted
	}
	return filter
}

// parseIDList parses a comma separated ID list, skipping invalid entries.
func parseIDList(raw string) []id.ID {
	if raw == "" {
		return nil
	}
	var ids []id.ID
	for _, part := range strings.Split(raw, ",") {
		if parsed, err := id.Parse(strings.TrimSpace(part)); err == nil {
			ids = append(ids, parsed)
		}
	}
	return ids
}
