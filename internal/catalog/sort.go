package catalog

import (
	"slices"

	"region-storefront/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortBy names a sortable product field.
type SortBy string

const (
	SortNone   SortBy = ""
	SortTitle  SortBy = "title"
	SortRating SortBy = "rating"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSort normalises raw sort parameters. Unknown fields mean no sorting
// and unknown directions mean ascending.
func ParseSort(by, order string) (SortBy, Order) {
	sortBy := SortNone
	switch SortBy(by) {
	case SortTitle, SortRating:
		sortBy = SortBy(by)
	}
	if Order(order) == Desc {
		return sortBy, Desc
	}
	return sortBy, Asc
}

// Sort returns a stably sorted copy of products. Titles are compared with a
// locale-aware collator; ratings numerically.
func Sort(products []domain.Product, by SortBy, order Order) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}

	var cmp func(a, b domain.Product) int
	switch by {
	case SortTitle:
		c := collate.New(language.English)
		cmp = func(a, b domain.Product) int {
			return c.CompareString(a.Title, b.Title)
		}
	case SortRating:
		cmp = func(a, b domain.Product) int {
			switch {
			case a.Rating < b.Rating:
				return -1
			case a.Rating > b.Rating:
				return 1
			}
			return 0
		}
	default:
		return out
	}

	if order == Desc {
		asc := cmp
		cmp = func(a, b domain.Product) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, cmp)
	return out
}
