package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/persistence"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
)

// CategoryLister lists canonical categories
type CategoryLister interface {
	List(ctx context.Context, q persistence.CategoryListQuery) ([]ledger.Category, error)
}

// CategoryHandler serves the category listing
type CategoryHandler struct {
	BaseHandler
	categories CategoryLister
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories CategoryLister) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List returns categories with their derived totals
func (h *CategoryHandler) List(c *gin.Context) {
	var in dto.CategoryListQuery
	if !h.BindQuery(c, &in) {
		return
	}
	cats, err := h.categories.List(c.Request.Context(), persistence.CategoryListQuery{
		Kind:    ledger.CategoryKind(in.Kind),
		SortBy:  in.Sort,
		SortDir: strings.ToUpper(in.Order),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, dto.ToCategoryResponses(cats), len(cats))
}

// RegisterRoutes registers the category routes
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.List)
}
