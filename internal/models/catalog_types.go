package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go out as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// CatalogKind names one of the three sellable tables.
// The same values double as the Category 'type' column.
type CatalogKind string

const (
	KindProduct CatalogKind = "product"
	KindGift    CatalogKind = "gift"
	KindGrocery CatalogKind = "grocery"
)

// CatalogKinds lists every kind in a fixed order.
var CatalogKinds = []CatalogKind{KindProduct, KindGift, KindGrocery}

// Valid reports whether k is one of the known kinds.
func (k CatalogKind) Valid() bool {
	switch k {
	case KindProduct, KindGift, KindGrocery:
		return true
	}
	return false
}

// Table returns the table holding items of this kind.
func (k CatalogKind) Table() string {
	switch k {
	case KindGift:
		return "gifts"
	case KindGrocery:
		return "groceries"
	default:
		return "products"
	}
}

// Path returns the plural URL segment, e.g. "groceries".
func (k CatalogKind) Path() string {
	return k.Table()
}

// HasCategory reports whether items of this kind carry a category_id column.
func (k CatalogKind) HasCategory() bool {
	return k == KindProduct
}

// CatalogItem is the shared shape of the 'products', 'gifts' and 'groceries' tables.
type CatalogItem struct {
	ID          string          `json:"id" db:"id"`
	Kind        CatalogKind     `json:"kind" db:"-"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	ImageURLs   []string        `json:"imageUrls" db:"image_urls"` // Stored as a JSON array
	CategoryID  *string         `json:"categoryId,omitempty" db:"category_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// DisplayImage returns the image the storefront should show for this item.
func (i *CatalogItem) DisplayImage(placeholder string) string {
	if i.ImageURL != "" {
		return i.ImageURL
	}
	if len(i.ImageURLs) > 0 {
		return i.ImageURLs[0]
	}
	return placeholder
}

// CatalogPatch holds a sparse update. A nil field is left untouched.
// CategoryID pointing at "" clears the category.
type CatalogPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	ImageURLs   *[]string
	CategoryID  *string
}

// CatalogFilter narrows a catalog listing with equality predicates.
type CatalogFilter struct {
	CategoryID string
}
