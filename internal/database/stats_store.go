package database

import (
	"context"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/shopspring/decimal"
)

// DashboardStats gathers the admin dashboard counters in one round trip.
func (s *Store) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM gifts),
			(SELECT COUNT(*) FROM groceries),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending'),
			(SELECT COUNT(*) FROM users),
			(SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> 'cancelled')`

	var stats models.DashboardStats
	var revenue decimal.NullDecimal
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.Products, &stats.Gifts, &stats.Groceries, &stats.Categories,
		&stats.Orders, &stats.PendingOrders, &stats.Users, &revenue,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	stats.Revenue = revenue.Decimal
	return &stats, nil
}

// DeleteOrphans removes comments, replies and likes whose parent row is gone.
// Deleting a catalog item does not cascade, so this runs on a schedule.
func (s *Store) DeleteOrphans(ctx context.Context) (models.SweepResult, error) {
	var result models.SweepResult

	steps := []struct {
		count *int64
		query string
	}{
		{&result.Comments, `
			DELETE FROM product_comments
			WHERE product_id NOT IN (SELECT id FROM products)
			  AND product_id NOT IN (SELECT id FROM gifts)
			  AND product_id NOT IN (SELECT id FROM groceries)`},
		{&result.ProductLikes, `
			DELETE FROM product_likes
			WHERE product_id NOT IN (SELECT id FROM products)
			  AND product_id NOT IN (SELECT id FROM gifts)
			  AND product_id NOT IN (SELECT id FROM groceries)`},
		{&result.Replies, `
			DELETE FROM comment_replies
			WHERE comment_id NOT IN (SELECT id FROM product_comments)`},
		{&result.CommentLikes, `
			DELETE FROM comment_likes
			WHERE (comment_id IS NOT NULL AND comment_id NOT IN (SELECT id FROM product_comments))
			   OR (reply_id IS NOT NULL AND reply_id NOT IN (SELECT id FROM comment_replies))`},
	}

	for _, step := range steps {
		res, err := s.DB.ExecContext(ctx, step.query)
		if err != nil {
			return result, fmt.Errorf("sweep orphans: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return result, err
		}
		*step.count = n
	}
	return result, nil
}
