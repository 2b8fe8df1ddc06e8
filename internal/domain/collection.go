package domain

// Collection is a promoted grouping shown on the home page
type Collection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// CollectionPatch is a partial collection update.
type CollectionPatch struct {
	Title       *string
	Image       *string
	Category    *string
	Description *string
}

// Category is an editorial category document managed from the admin panel.
// Filtering never reads these; it works off the static taxonomy.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Name        *string
	Description *string
	Slug        *string
}
