package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/domain/badge"
	"github.com/lllypuk/styx/internal/domain/category"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

// BadgeLister reads the badge catalog.
type BadgeLister interface {
	Execute(ctx context.Context) ([]badge.Badge, error)
}

// CategoryLister reads the category catalog.
type CategoryLister interface {
	Execute(ctx context.Context) ([]category.Category, error)
}

// CatalogHandler serves the read-only catalogs.
type CatalogHandler struct {
	badges     BadgeLister
	categories CategoryLister
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(badges BadgeLister, categories CategoryLister) *CatalogHandler {
	return &CatalogHandler{badges: badges, categories: categories}
}

// RegisterRoutes registers catalog routes with the router.
func (h *CatalogHandler) RegisterRoutes(r *httpserver.Router) {
	r.Public().GET("/badges", h.ListBadges)
	r.Public().GET("/categories", h.ListCategories)
}

// ListBadges handles GET /api/badges.
func (h *CatalogHandler) ListBadges(c echo.Context) error {
	badges, err := h.badges.Execute(c.Request().Context())
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	return httpserver.RespondOK(c, ToBadgeResponses(badges))
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.categories.Execute(c.Request().Context())
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	return httpserver.RespondOK(c, ToCategoryResponses(categories))
}
