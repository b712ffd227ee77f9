package models

import "time"

// Category priorities shown as badges on the storefront. The column is free text;
// these are the values the admin panel offers.
const (
	PriorityNormal     = "normal"
	PriorityPopular    = "popular"
	PriorityTrending   = "trending"
	PriorityNew        = "new"
	PriorityFeatured   = "featured"
	PriorityBestseller = "bestseller"
	PrioritySale       = "sale"
)

// Category defines the struct for the 'categories' table.
// (name, type) is unique.
type Category struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Slug        string      `json:"slug" db:"slug"`
	Type        CatalogKind `json:"type" db:"type"`
	Description string      `json:"description" db:"description"`
	ImageURL    string      `json:"imageUrl" db:"image_url"`
	Priority    string      `json:"priority" db:"priority"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`

	// Virtual Field (Not in DB) - number of products linked to this category
	ProductCount int `json:"productCount" db:"-"`
}

// CategoryPatch holds a sparse category update.
type CategoryPatch struct {
	Name        *string
	Slug        *string
	Type        *CatalogKind
	Description *string
	ImageURL    *string
	Priority    *string
}

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	Type     string
	Priority string
}
