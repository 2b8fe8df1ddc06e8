package domain

import "time"

// Region declares which viewer regions may see a product at all.
type Region string

const (
	RegionGlobal Region = "global"
	RegionIndia  Region = "india"
	RegionBoth   Region = "both"
)

// Valid reports whether r is one of the three product regions.
func (r Region) Valid() bool {
	switch r {
	case RegionGlobal, RegionIndia, RegionBoth:
		return true
	}
	return false
}

// ViewerRegion is the visitor's two-valued pricing context.
type ViewerRegion string

const (
	ViewerGlobal ViewerRegion = "global"
	ViewerIndia  ViewerRegion = "india"
)

// DefaultViewerRegion is used when a visitor has not chosen a region.
const DefaultViewerRegion = ViewerGlobal

// ParseViewerRegion maps raw input to a viewer region. Anything unknown
// falls back to the default so a stale cookie never breaks browsing.
func ParseViewerRegion(raw string) (ViewerRegion, bool) {
	switch ViewerRegion(raw) {
	case ViewerGlobal:
		return ViewerGlobal, true
	case ViewerIndia:
		return ViewerIndia, true
	}
	return DefaultViewerRegion, false
}

// Other returns the opposite viewer region.
func (v ViewerRegion) Other() ViewerRegion {
	if v == ViewerIndia {
		return ViewerGlobal
	}
	return ViewerIndia
}

// RegionalString holds one optional value per viewer region. An empty
// string means the variant is unset.
type RegionalString struct {
	Global string `json:"global,omitempty"`
	India  string `json:"india,omitempty"`
}

// For returns the variant for the given viewer region.
func (s RegionalString) For(v ViewerRegion) string {
	if v == ViewerIndia {
		return s.India
	}
	return s.Global
}

// IsZero reports whether neither variant is set.
func (s RegionalString) IsZero() bool {
	return s.Global == "" && s.India == ""
}

// Product represents one sellable item in the catalog
type Product struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Image       string         `json:"image"`
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory,omitempty"`
	Price       RegionalString `json:"price"`
	AmazonLink  RegionalString `json:"amazonLink"`
	Rating      float64        `json:"rating"`
	Region      Region         `json:"region"`
	CreatedAt   time.Time      `json:"-"`
}

// NewProduct carries the fields of a product that is about to be stored.
// ID may be empty, in which case one is generated.
type NewProduct struct {
	ID          string
	Title       string
	Image       string
	Category    string
	Subcategory string
	Price       RegionalString
	AmazonLink  RegionalString
	Rating      float64
	Region      Region
}

// ProductPatch is a partial product update. Nil fields are left untouched.
// A non-nil pointer to an empty string clears an optional field.
type ProductPatch struct {
	Title       *string
	Image       *string
	Category    *string
	Subcategory *string
	Price       *RegionalString
	AmazonLink  *RegionalString
	Rating      *float64
	Region      *Region
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Image == nil && p.Category == nil && p.Subcategory == nil &&
		p.Price == nil && p.AmazonLink == nil && p.Rating == nil && p.Region == nil
}

// Apply returns a copy of product with the patch applied.
func (p ProductPatch) Apply(product Product) Product {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Subcategory != nil {
		product.Subcategory = *p.Subcategory
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.AmazonLink != nil {
		product.AmazonLink = *p.AmazonLink
	}
	if p.Rating != nil {
		product.Rating = *p.Rating
	}
	if p.Region != nil {
		product.Region = *p.Region
	}
	return product
}
