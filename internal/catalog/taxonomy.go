package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// All is the wildcard value for category and subcategory filters.
const All = "all"

const (
	techPrefix     = "tech-"
	clothingPrefix = "clothing-"

	// UmbrellaTech and UmbrellaClothing match every leaf stored under them.
	UmbrellaTech     = "tech"
	UmbrellaClothing = "clothing"
)

var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownSubcategory = errors.New("unknown subcategory")
	ErrMissingLeaf        = errors.New("category requires a more specific choice")
)

// Option is one selectable taxonomy entry.
type Option struct {
	Value    string   `json:"value"`
	Label    string   `json:"label"`
	Children []Option `json:"children,omitempty"`
}

var techLeaves = []Option{
	{Value: "tech-gaming", Label: "Gaming Accessories"},
	{Value: "tech-smartphones", Label: "Smartphones"},
	{Value: "tech-pc-laptops", Label: "PC/Laptops"},
	{Value: "tech-audio", Label: "Audio & Headphones"},
	{Value: "tech-mobile", Label: "Mobile Accessories"},
	{Value: "tech-computer", Label: "Computer Accessories"},
	{Value: "tech-smart-home", Label: "Smart Home"},
	{Value: "tech-wearables", Label: "Wearables"},
	{Value: "tech-cameras", Label: "Cameras & Accessories"},
	{Value: "tech-storage", Label: "Storage & Drives"},
}

func clothingLeaves(gender string, withPants bool) []Option {
	opts := []Option{
		{Value: gender + "-tshirts", Label: "T-Shirts"},
		{Value: gender + "-hoodies", Label: "Hoodies & Sweatshirts"},
		{Value: gender + "-jackets", Label: "Jackets"},
	}
	if withPants {
		opts = append(opts, Option{Value: gender + "-pants", Label: "Pants & Shorts"})
	}
	return append(opts, Option{Value: gender + "-accessories", Label: "Accessories"})
}

var taxonomy = []Option{
	{Value: "plushies", Label: "Plushies"},
	{Value: "anime", Label: "Anime Merch"},
	{Value: "gaming", Label: "Gaming"},
	{Value: UmbrellaTech, Label: "Tech", Children: techLeaves},
	{Value: "accessories", Label: "Accessories"},
	{Value: UmbrellaClothing, Label: "Clothing", Children: []Option{
		{Value: "clothing-men", Label: "Men's Clothing", Children: clothingLeaves("men", true)},
		{Value: "clothing-women", Label: "Women's Clothing", Children: clothingLeaves("women", true)},
		{Value: "clothing-unisex", Label: "Unisex Clothing", Children: clothingLeaves("unisex", false)},
	}},
	{Value: "amazon-finds", Label: "Amazon Finds"},
}

var (
	labels        = map[string]string{}
	categories    = map[string]bool{}
	subcategories = map[string]string{} // subcategory -> owning clothing branch
)

func init() {
	for _, top := range taxonomy {
		labels[top.Value] = top.Label
		categories[top.Value] = true
		for _, mid := range top.Children {
			labels[mid.Value] = mid.Label
			categories[mid.Value] = true
			for _, leaf := range mid.Children {
				labels[leaf.Value] = leaf.Label
				subcategories[leaf.Value] = mid.Value
			}
		}
	}
}

// Taxonomy returns a copy of the static category tree.
func Taxonomy() []Option {
	return copyOptions(taxonomy)
}

func copyOptions(in []Option) []Option {
	out := make([]Option, len(in))
	for i, o := range in {
		out[i] = Option{Value: o.Value, Label: o.Label}
		if o.Children != nil {
			out[i].Children = copyOptions(o.Children)
		}
	}
	return out
}

// Label returns the display label for a category or subcategory tag, or the
// tag itself when it is not part of the taxonomy.
func Label(tag string) string {
	if l, ok := labels[tag]; ok {
		return l
	}
	return tag
}

// IsKnownCategory reports whether value is a top-level category, an umbrella
// or one of the stored tech/clothing leaves.
func IsKnownCategory(value string) bool {
	return categories[value]
}

// IsKnownSubcategory reports whether value is a clothing subcategory tag.
func IsKnownSubcategory(value string) bool {
	_, ok := subcategories[value]
	return ok
}

// IsTech reports whether a stored category is a tech leaf.
func IsTech(category string) bool {
	return strings.HasPrefix(category, techPrefix)
}

// IsClothing reports whether a stored category is a clothing branch.
func IsClothing(category string) bool {
	return strings.HasPrefix(category, clothingPrefix)
}

// TopLevel maps a stored category to its top-level taxonomy entry.
func TopLevel(category string) string {
	switch {
	case IsTech(category):
		return UmbrellaTech
	case IsClothing(category):
		return UmbrellaClothing
	}
	return category
}

// MatchesCategory applies the exact-or-umbrella category rule.
func MatchesCategory(stored, filter string) bool {
	switch filter {
	case All:
		return true
	case UmbrellaClothing:
		return stored == filter || IsClothing(stored)
	case UmbrellaTech:
		return stored == filter || IsTech(stored)
	}
	return stored == filter
}

// ValidatePlacement checks that a category/subcategory pair is storable.
// Tech items carry the leaf in category and never use subcategory; clothing
// items carry the branch in category and a branch-owned subcategory.
func ValidatePlacement(category, subcategory string) error {
	if !IsKnownCategory(category) || category == All {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	switch {
	case category == UmbrellaTech || category == UmbrellaClothing:
		return fmt.Errorf("%w: %q", ErrMissingLeaf, category)
	case IsTech(category):
		if subcategory != "" {
			return fmt.Errorf("%w: tech items do not use subcategory", ErrUnknownSubcategory)
		}
	case IsClothing(category):
		if subcategory == "" {
			return fmt.Errorf("%w: %q", ErrMissingLeaf, category)
		}
		if subcategories[subcategory] != category {
			return fmt.Errorf("%w: %q is not part of %q", ErrUnknownSubcategory, subcategory, category)
		}
	default:
		if subcategory != "" {
			return fmt.Errorf("%w: %q has no subcategories", ErrUnknownSubcategory, category)
		}
	}
	return nil
}
