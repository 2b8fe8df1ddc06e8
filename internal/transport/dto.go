package transport

import (
	"encoding/json"
	"time"

	"region-storefront/internal/catalog"
	"region-storefront/internal/domain"
)

// Nullable tells an absent JSON field apart from an explicit null. Set is
// true whenever the field was present; Value stays zero for null.
type Nullable[T any] struct {
	Set   bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		var zero T
		n.Value = zero
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// Ptr returns nil when the field was absent.
func (n Nullable[T]) Ptr() *T {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// RegionalRequest is a per-region price or link pair
type RegionalRequest struct {
	Global string `json:"global"`
	India  string `json:"india"`
}

func (r RegionalRequest) toDomain() domain.RegionalString {
	return domain.RegionalString{Global: r.Global, India: r.India}
}

// RegionalLinkRequest is a per-region marketplace link pair
type RegionalLinkRequest struct {
	Global string `json:"global" validate:"omitempty,http_url"`
	India  string `json:"india" validate:"omitempty,http_url"`
}

func (r RegionalLinkRequest) toDomain() domain.RegionalString {
	return domain.RegionalString{Global: r.Global, India: r.India}
}

// CreateProductRequest represents the admin product form
type CreateProductRequest struct {
	ID          string              `json:"id"`
	Title       string              `json:"title" validate:"required,max=200"`
	Image       string              `json:"image" validate:"required,http_url"`
	Category    string              `json:"category" validate:"required,category"`
	Subcategory string              `json:"subcategory"`
	Price       RegionalRequest     `json:"price"`
	AmazonLink  RegionalLinkRequest `json:"amazonLink"`
	Rating      float64             `json:"rating" validate:"gte=0,lte=5"`
	Region      string              `json:"region" validate:"omitempty,product_region"`
}

func (r CreateProductRequest) toDomain() domain.NewProduct {
	region := domain.Region(r.Region)
	if region == "" {
		region = domain.RegionBoth
	}
	return domain.NewProduct{
		ID:          r.ID,
		Title:       r.Title,
		Image:       r.Image,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Price:       r.Price.toDomain(),
		AmazonLink:  r.AmazonLink.toDomain(),
		Rating:      r.Rating,
		Region:      region,
	}
}

// UpdateProductRequest is a partial product update. Optional fields accept
// null to clear them.
type UpdateProductRequest struct {
	Title       *string                       `json:"title" validate:"omitempty,max=200"`
	Image       *string                       `json:"image" validate:"omitempty,http_url"`
	Category    *string                       `json:"category" validate:"omitempty,category"`
	Subcategory Nullable[string]              `json:"subcategory"`
	Price       Nullable[RegionalRequest]     `json:"price"`
	AmazonLink  Nullable[RegionalLinkRequest] `json:"amazonLink"`
	Rating      *float64                      `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Region      *string                       `json:"region" validate:"omitempty,product_region"`
}

func (r UpdateProductRequest) toDomain() domain.ProductPatch {
	patch := domain.ProductPatch{
		Title:       r.Title,
		Image:       r.Image,
		Category:    r.Category,
		Subcategory: r.Subcategory.Ptr(),
		Rating:      r.Rating,
	}
	if r.Price.Set {
		price := r.Price.Value.toDomain()
		patch.Price = &price
	}
	if r.AmazonLink.Set {
		link := r.AmazonLink.Value.toDomain()
		patch.AmazonLink = &link
	}
	if r.Region != nil {
		region := domain.Region(*r.Region)
		patch.Region = &region
	}
	return patch
}

// ProductResponse is a product as one viewer region sees it
type ProductResponse struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Image            string  `json:"image"`
	Category         string  `json:"category"`
	CategoryLabel    string  `json:"category_label"`
	Subcategory      string  `json:"subcategory,omitempty"`
	SubcategoryLabel string  `json:"subcategory_label,omitempty"`
	Price            string  `json:"price"`
	DisplayPrice     string  `json:"display_price"`
	BuyLink          string  `json:"buy_link"`
	Rating           float64 `json:"rating"`
	Stars            float64 `json:"stars"`
	Region           string  `json:"region"`
}

func toProductResponse(p domain.Product, viewer domain.ViewerRegion) ProductResponse {
	price := catalog.ResolvePrice(p, viewer)
	resp := ProductResponse{
		ID:            p.ID,
		Title:         p.Title,
		Image:         p.Image,
		Category:      p.Category,
		CategoryLabel: catalog.Label(p.Category),
		Subcategory:   p.Subcategory,
		Price:         price,
		DisplayPrice:  catalog.FormatPrice(price, viewer),
		BuyLink:       catalog.ResolveLink(p, viewer),
		Rating:        p.Rating,
		Stars:         catalog.StarRating(p.Rating),
		Region:        string(p.Region),
	}
	if p.Subcategory != "" {
		resp.SubcategoryLabel = catalog.Label(p.Subcategory)
	}
	return resp
}

func toProductResponses(products []domain.Product, viewer domain.ViewerRegion) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, viewer))
	}
	return out
}

// ProductListResponse is a page of the public catalog
type ProductListResponse struct {
	Products  []ProductResponse `json:"products"`
	Count     int               `json:"count"`
	Total     int               `json:"total"`
	Stale     bool              `json:"stale"`
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
	Region    string            `json:"region"`
}

// AdminProductListResponse carries raw products for the admin table
type AdminProductListResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
	Total    int              `json:"total"`
	Stale    bool             `json:"stale"`
}

// RegionRequest changes the viewer region
type RegionRequest struct {
	Region string `json:"region" validate:"required,viewer_region"`
}

// RegionResponse reports the active viewer region
type RegionResponse struct {
	Region    string   `json:"region"`
	Available []string `json:"available"`
}

// CollectionRequest creates or replaces a collection
type CollectionRequest struct {
	ID          string `json:"id" validate:"omitempty,max=100"`
	Title       string `json:"title" validate:"required,max=200"`
	Image       string `json:"image" validate:"omitempty,http_url"`
	Category    string `json:"category" validate:"required,category"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateCollectionRequest is a partial collection update
type UpdateCollectionRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=200"`
	Image       Nullable[string] `json:"image"`
	Category    *string          `json:"category" validate:"omitempty,category"`
	Description Nullable[string] `json:"description"`
}

func (r UpdateCollectionRequest) toDomain() domain.CollectionPatch {
	return domain.CollectionPatch{
		Title:       r.Title,
		Image:       r.Image.Ptr(),
		Category:    r.Category,
		Description: r.Description.Ptr(),
	}
}

// CollectionListResponse lists home page collections
type CollectionListResponse struct {
	Collections []domain.Collection `json:"collections"`
	Stale       bool                `json:"stale"`
}

// CategoryRequest creates a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateCategoryRequest renames or redescribes a category
type UpdateCategoryRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	Description Nullable[string] `json:"description"`
}

func (r UpdateCategoryRequest) toDomain() domain.CategoryPatch {
	return domain.CategoryPatch{Name: r.Name, Description: r.Description.Ptr()}
}

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Admin       AdminProfile `json:"admin"`
}

// AdminProfile describes the signed-in admin
type AdminProfile struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toAdminProfile(p domain.Principal) AdminProfile {
	return AdminProfile{Email: p.Email, Role: p.Role, ExpiresAt: p.ExpiresAt}
}
