package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"rxledger/internal/domain/registers/batch"
)

// BatchHandler exposes read access to the inventory batch register.
type BatchHandler struct {
	*BaseHandler
	service *batch.Service
	repo    batch.Repository
}

// NewBatchHandler creates a new batch register handler.
func NewBatchHandler(base *BaseHandler, service *batch.Service, repo batch.Repository) *BatchHandler {
	return &BatchHandler{BaseHandler: base, service: service, repo: repo}
}

// GetAvailability handles GET /availability/:branchId/:medicineId.
func (h *BatchHandler) GetAvailability(c *gin.Context) {
	branchID, ok := h.ParseIDParam(c, "branchId")
	if !ok {
		return
	}
	medicineID, ok := h.ParseIDParam(c, "medicineId")
	if !ok {
		return
	}

	total, err := h.service.GetAvailability(c.Request.Context(), branchID, medicineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	batches, err := h.repo.GetAvailableBatches(c.Request.Context(), branchID, medicineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"total":   total,
		"batches": batches,
	})
}

// GetExpiring handles GET /expiring/:branchId.
func (h *BatchHandler) GetExpiring(c *gin.Context) {
	branchID, ok := h.ParseIDParam(c, "branchId")
	if !ok {
		return
	}

	days := h.ParseIntQuery(c, "withinDays", 90)
	before := time.Now().AddDate(0, 0, days)

	batches, err := h.service.GetExpiring(c.Request.Context(), branchID, before)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, batches)
}

// GetMovements handles GET /movements/:recorderId.
func (h *BatchHandler) GetMovements(c *gin.Context) {
	recorderID, ok := h.ParseIDParam(c, "recorderId")
	if !ok {
		return
	}

	movements, err := h.repo.GetMovementsByRecorder(c.Request.Context(), recorderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, movements)
}
