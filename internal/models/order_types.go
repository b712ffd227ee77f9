package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order sources
const (
	SourceSite     = "site"
	SourceWhatsApp = "whatsapp"
	SourceOther    = "other"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderSource reports whether s is an accepted order source.
func ValidOrderSource(s string) bool {
	switch s {
	case SourceSite, SourceWhatsApp, SourceOther:
		return true
	}
	return false
}

// ValidOrderStatus reports whether s is an accepted order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the model for the 'orders' table
type Order struct {
	ID            string          `json:"id" db:"id"`
	CustomerName  string          `json:"customerName" db:"customer_name"`
	CustomerEmail string          `json:"customerEmail" db:"customer_email"`
	CustomerPhone string          `json:"customerPhone" db:"customer_phone"`
	Total         decimal.Decimal `json:"total" db:"total"` // As submitted by the client
	Source        string          `json:"source" db:"source"`
	Status        string          `json:"status" db:"status"`
	Notes         string          `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`

	Items []OrderItem `json:"items" db:"-"`
}

// OrderItem is the model for the 'order_items' table.
// No unit price is stored.
type OrderItem struct {
	ID        string    `json:"id" db:"id"`
	OrderID   string    `json:"orderId" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// OrderPatch is the admin-side order update.
type OrderPatch struct {
	Status *string
	Notes  *string
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status string
	Source string
}
