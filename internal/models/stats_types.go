package models

import "github.com/shopspring/decimal"

// DashboardStats returns KPI data for the admin dashboard.
type DashboardStats struct {
	Products      int             `json:"products"`
	Gifts         int             `json:"gifts"`
	Groceries     int             `json:"groceries"`
	Categories    int             `json:"categories"`
	Orders        int             `json:"orders"`
	PendingOrders int             `json:"pendingOrders"` // Count of 'pending' orders
	Users         int             `json:"users"`
	Revenue       decimal.Decimal `json:"revenue"` // Sum of non-cancelled order totals
}

// SweepResult counts the rows removed by one orphan sweep.
type SweepResult struct {
	Comments     int64 `json:"comments"`
	Replies      int64 `json:"replies"`
	ProductLikes int64 `json:"productLikes"`
	CommentLikes int64 `json:"commentLikes"`
}

// Total is the sum of all removed rows.
func (r SweepResult) Total() int64 {
	return r.Comments + r.Replies + r.ProductLikes + r.CommentLikes
}
