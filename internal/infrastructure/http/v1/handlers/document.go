package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"rxledger/internal/core/id"
)

// DocumentService is the generic CRUD surface shared by document services.
// Posting and workflow operations differ per document type and are exposed
// by the concrete handlers.
type DocumentService[T any] interface {
	Create(ctx context.Context, doc T) error
	GetByID(ctx context.Context, docID id.ID) (T, error)
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, docID id.ID) error
}

// DocumentHandler provides standard CRUD endpoints for one document type.
type DocumentHandler[T identifiable] struct {
	*BaseHandler
	service DocumentService[T]
	newFn   func() T
}

// NewDocumentHandler creates a generic document handler.
func NewDocumentHandler[T identifiable](base *BaseHandler, service DocumentService[T], newFn func() T) *DocumentHandler[T] {
	return &DocumentHandler[T]{
		BaseHandler: base,
		service:     service,
		newFn:       newFn,
	}
}

// Create handles POST /.
func (h *DocumentHandler[T]) Create(c *gin.Context) {
	doc := h.newFn()
	if !h.BindJSON(c, doc) {
		return
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.GetID())
}

// Get handles GET /:id.
func (h *DocumentHandler[T]) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Update handles PUT /:id.
func (h *DocumentHandler[T]) Update(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc := h.newFn()
	if !h.BindJSON(c, doc) {
		return
	}
	doc.SetID(docID)

	if err := h.service.Update(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /:id.
func (h *DocumentHandler[T]) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
