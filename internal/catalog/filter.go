package catalog

import (
	"strings"

	"region-storefront/internal/domain"
)

// Spec is the filter state of a listing request.
type Spec struct {
	SearchQuery string
	Category    string
	Subcategory string
	// Region narrows admin listings by product region. Ignored by Filter,
	// which always applies viewer visibility instead.
	Region string
}

// Normalize replaces empty and unknown filter values with All, so a stale
// query parameter widens the listing instead of emptying it.
func (s Spec) Normalize() Spec {
	if s.Category == "" || !IsKnownCategory(s.Category) {
		s.Category = All
	}
	if s.Subcategory == "" || !IsKnownSubcategory(s.Subcategory) {
		s.Subcategory = All
	}
	switch domain.Region(s.Region) {
	case domain.RegionGlobal, domain.RegionIndia, domain.RegionBoth:
	default:
		s.Region = All
	}
	return s
}

// Filter returns the products visible to viewer that match spec, in input
// order. The input slice is not modified.
func Filter(products []domain.Product, viewer domain.ViewerRegion, spec Spec) []domain.Product {
	spec = spec.Normalize()
	query := strings.ToLower(spec.SearchQuery)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !IsVisible(p, viewer) {
			continue
		}
		if matches(p, query, spec) {
			out = append(out, p)
		}
	}
	return out
}

// FilterAll is the admin variant of Filter: no viewer visibility step, but
// spec.Region selects products stored for that region (or for both).
func FilterAll(products []domain.Product, spec Spec) []domain.Product {
	spec = spec.Normalize()
	query := strings.ToLower(spec.SearchQuery)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if spec.Region != All && string(p.Region) != spec.Region && p.Region != domain.RegionBoth {
			continue
		}
		if matches(p, query, spec) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p domain.Product, query string, spec Spec) bool {
	if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
		return false
	}
	if !MatchesCategory(p.Category, spec.Category) {
		return false
	}
	if spec.Subcategory != All && p.Subcategory != spec.Subcategory {
		return false
	}
	return true
}
