package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/indumine/catalog-auth/internal/core/domain"
	"github.com/indumine/catalog-auth/internal/core/ports"
	"github.com/indumine/catalog-auth/internal/pkg/metrics"
)

// CatalogService serves the external catalog through the permission table.
type CatalogService struct {
	client ports.CatalogClient
	cache  ports.CategoryCache
	log    zerolog.Logger
}

// NewCatalogService returns a CatalogService. A nil cache disables caching.
func NewCatalogService(client ports.CatalogClient, cache ports.CategoryCache, log zerolog.Logger) *CatalogService {
	if cache == nil {
		cache = nopCategoryCache{}
	}
	return &CatalogService{client: client, cache: cache, log: log}
}

// Categories returns the catalog categories the caller may view.
func (s *CatalogService) Categories(ctx context.Context, claims *domain.Claims, bearer string) ([]domain.CatalogCategory, error) {
	all, err := s.allCategories(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return domain.FilterCategories(all, domain.ResolveAccessibleCategories(claims.Principal())), nil
}

// Products returns the upstream product list for slug once the caller is
// allowed to view that category.
func (s *CatalogService) Products(ctx context.Context, claims *domain.Claims, bearer, slug string) (json.RawMessage, error) {
	if err := domain.Authorize(claims.Principal(), domain.ActionView, slug).Err(); err != nil {
		return nil, err
	}

	products, err := s.client.ProductsByCategory(ctx, bearer, slug)
	if err != nil {
		return nil, fmt.Errorf("products %s: %w", slug, err)
	}
	return products, nil
}

// allCategories reads through the cache. Cache failures are logged and
// bypassed; they never fail the request.
func (s *CatalogService) allCategories(ctx context.Context, bearer string) ([]domain.CatalogCategory, error) {
	cached, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		metrics.CategoryCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("category cache read failed, fetching from catalog")
	case ok:
		metrics.CategoryCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CategoryCacheTotal.WithLabelValues("miss").Inc()
	}

	categories, err := s.client.ListCategories(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if err := s.cache.Set(ctx, categories); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache categories")
	}
	return categories, nil
}

type nopCategoryCache struct{}

func (nopCategoryCache) Get(context.Context) ([]domain.CatalogCategory, bool, error) {
	return nil, false, nil
}

func (nopCategoryCache) Set(context.Context, []domain.CatalogCategory) error { return nil }
