package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/indumine/catalog-auth/internal/api/middleware"
	"github.com/indumine/catalog-auth/internal/core/domain"
	"github.com/indumine/catalog-auth/internal/core/ports"
)

// CatalogHandler exposes the external catalog filtered by the caller's
// permissions.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type categoriesResponse struct {
	Categories []domain.CatalogCategory `json:"categories"`
}

// Categories handles GET /catalog/categories.
//
// @Summary      List viewable categories
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  categoriesResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /catalog/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	categories, err := h.service.Categories(c.Request().Context(), claims, middleware.TokenFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: categories})
}

// Products handles GET /catalog/categories/:slug/products. The upstream
// payload is passed through unchanged.
//
// @Summary      List products of a category
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path      string  true  "Category slug"
// @Success      200   {array}   object
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /catalog/categories/{slug}/products [get]
func (h *CatalogHandler) Products(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	products, err := h.service.Products(c.Request().Context(), claims, middleware.TokenFrom(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, products)
}
