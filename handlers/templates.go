package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// templateStore is the part of services.TemplateStore the handler needs.
type templateStore[T any, P any] interface {
	Create(ctx context.Context, restaurantID uuid.UUID, row P) (P, error)
	List(ctx context.Context, restaurantID uuid.UUID, includeArchived bool) ([]T, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (P, error)
	Update(ctx context.Context, restaurantID, id uuid.UUID, row P) (P, error)
	Archive(ctx context.Context, restaurantID, id uuid.UUID) (P, error)
	Restore(ctx context.Context, restaurantID, id uuid.UUID) (P, error)
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

// TemplateHandler serves CRUD for one template domain. R is the request body
// that decodes into a row.
type TemplateHandler[T any, P any, R interface{ ToModel() P }] struct {
	Store templateStore[T, P]
}

func NewTemplateHandler[T any, P any, R interface{ ToModel() P }](store templateStore[T, P]) *TemplateHandler[T, P, R] {
	return &TemplateHandler[T, P, R]{Store: store}
}

// List returns active and inactive templates; ?include_archived=true adds
// archived ones.
func (h *TemplateHandler[T, P, R]) List(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))
	restaurantID, _ := tenant(c)
	rows, err := h.Store.List(c.Request.Context(), restaurantID, includeArchived)
	if err != nil {
		respondError(c, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *TemplateHandler[T, P, R]) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurantID, _ := tenant(c)
	row, err := h.Store.Get(c.Request.Context(), restaurantID, id)
	if err != nil {
		respondError(c, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *TemplateHandler[T, P, R]) Create(c *gin.Context) {
	var req R
	if !bind(c, &req) {
		return
	}
	restaurantID, _ := tenant(c)
	row, err := h.Store.Create(c.Request.Context(), restaurantID, req.ToModel())
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *TemplateHandler[T, P, R]) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req R
	if !bind(c, &req) {
		return
	}
	restaurantID, _ := tenant(c)
	row, err := h.Store.Update(c.Request.Context(), restaurantID, id, req.ToModel())
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *TemplateHandler[T, P, R]) Archive(c *gin.Context) {
	h.setArchived(c, h.Store.Archive)
}

func (h *TemplateHandler[T, P, R]) Restore(c *gin.Context) {
	h.setArchived(c, h.Store.Restore)
}

func (h *TemplateHandler[T, P, R]) setArchived(c *gin.Context, op func(context.Context, uuid.UUID, uuid.UUID) (P, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurantID, _ := tenant(c)
	row, err := op(c.Request.Context(), restaurantID, id)
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *TemplateHandler[T, P, R]) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurantID, _ := tenant(c)
	if err := h.Store.Delete(c.Request.Context(), restaurantID, id); err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// RegisterRoutes mounts the template CRUD routes on g. Writes go through
// the manage middleware.
func (h *TemplateHandler[T, P, R]) RegisterRoutes(g *gin.RouterGroup, manage gin.HandlerFunc) {
	g.GET("", h.List)
	g.POST("", manage, h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", manage, h.Update)
	g.DELETE("/:id", manage, h.Delete)
	g.POST("/:id/archive", manage, h.Archive)
	g.POST("/:id/restore", manage, h.Restore)
}
