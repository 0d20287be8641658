package domain

import "slices"

// CatalogCategory is a product category as served by the external catalog API.
type CatalogCategory struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// FilterCategories keeps only the categories whose slug is in accessible,
// preserving the catalog order.
func FilterCategories(all []CatalogCategory, accessible []string) []CatalogCategory {
	out := make([]CatalogCategory, 0, len(all))
	for _, c := range all {
		if slices.Contains(accessible, c.Slug) {
			out = append(out, c)
		}
	}
	return out
}
