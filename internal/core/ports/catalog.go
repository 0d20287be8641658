package ports

import (
	"context"
	"encoding/json"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

// CatalogClient talks to the external product/category API on behalf of the
// caller, forwarding the caller's bearer token.
type CatalogClient interface {
	ListCategories(ctx context.Context, bearer string) ([]domain.CatalogCategory, error)
	ProductsByCategory(ctx context.Context, bearer, slug string) (json.RawMessage, error)
}

// CategoryCache stores the catalog's category list. A miss is reported as
// (nil, false, nil).
type CategoryCache interface {
	Get(ctx context.Context) ([]domain.CatalogCategory, bool, error)
	Set(ctx context.Context, categories []domain.CatalogCategory) error
}

// CatalogService exposes the catalog filtered through the permission table.
type CatalogService interface {
	Categories(ctx context.Context, claims *domain.Claims, bearer string) ([]domain.CatalogCategory, error)
	Products(ctx context.Context, claims *domain.Claims, bearer, slug string) (json.RawMessage, error)
}
