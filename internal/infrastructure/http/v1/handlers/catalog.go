package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"rxledger/internal/core/id"
	"rxledger/internal/domain"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// CatalogService is the generic surface shared by all catalog services.
type CatalogService[T any] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, entityID id.ID) (T, error)
	GetByCode(ctx context.Context, code string) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, entityID id.ID) error
	SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// identifiable lets the generic handler stamp the path ID onto the body.
type identifiable interface {
	GetID() id.ID
	SetID(id.ID)
}

// CatalogHandler provides standard CRUD endpoints for one catalog.
type CatalogHandler[T identifiable] struct {
	*BaseHandler
	service CatalogService[T]
	newFn   func() T
}

// NewCatalogHandler creates a generic catalog handler.
func NewCatalogHandler[T identifiable](base *BaseHandler, service CatalogService[T], newFn func() T) *CatalogHandler[T] {
	return &CatalogHandler[T]{
		BaseHandler: base,
		service:     service,
		newFn:       newFn,
	}
}

// List handles GET /.
func (h *CatalogHandler[T]) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// Create handles POST /.
func (h *CatalogHandler[T]) Create(c *gin.Context) {
	entity := h.newFn()
	if !h.BindJSON(c, entity) {
		return
	}

	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entity.GetID())
}

// Get handles GET /:id.
func (h *CatalogHandler[T]) Get(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entity)
}

// Update handles PUT /:id.
func (h *CatalogHandler[T]) Update(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	entity := h.newFn()
	if !h.BindJSON(c, entity) {
		return
	}
	entity.SetID(entityID)

	if err := h.service.Update(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entity)
}

// Delete handles DELETE /:id.
func (h *CatalogHandler[T]) Delete(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// SetDeletionMark handles POST /:id/deletion-mark.
func (h *CatalogHandler[T]) SetDeletionMark(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.SetDeletionMarkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetDeletionMark(c.Request.Context(), entityID, req.Marked); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
