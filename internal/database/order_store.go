package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/google/uuid"
)

const orderColumns = "id, customer_name, customer_email, customer_phone, total, source, status, notes, created_at, updated_at"

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.Total,
		&o.Source, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Items = []models.OrderItem{}
	return &o, nil
}

// CreateOrder persists an order and its line items in one transaction.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	now := s.now()
	o.CreatedAt, o.UpdatedAt = now, now

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback() // Safety net

	orderQuery := "INSERT INTO orders (" + orderColumns + ") VALUES (" + placeholders(10) + ")"
	if _, err := tx.ExecContext(ctx, orderQuery,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Total,
		o.Source, o.Status, o.Notes, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := "INSERT INTO order_items (id, order_id, product_id, quantity, created_at) VALUES (?, ?, ?, ?, ?)"
	for i := range o.Items {
		item := &o.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = o.ID
		item.CreatedAt = now
		if _, err := tx.ExecContext(ctx, itemQuery, item.ID, item.OrderID, item.ProductID, item.Quantity, item.CreatedAt); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// ListOrders returns orders newest first, items included.
func (s *Store) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	var qb strings.Builder
	var args []interface{}

	qb.WriteString("SELECT " + orderColumns + " FROM orders WHERE 1 = 1")
	if filter.Status != "" {
		qb.WriteString(" AND status = ?")
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		qb.WriteString(" AND source = ?")
		args = append(args, filter.Source)
	}
	qb.WriteString(" ORDER BY created_at DESC")

	rows, err := s.DB.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	byID := map[string]*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// One query for every line item of the page
	ids := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := s.orderItems(ctx, s.DB, "order_id IN ("+placeholders(len(ids))+")", ids...)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return orders, nil
}

// GetOrder fetches an order with its items.
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	items, err := s.orderItems(ctx, s.DB, "order_id = ?", id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *Store) orderItems(ctx context.Context, q Querier, where string, args ...interface{}) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, order_id, product_id, quantity, created_at FROM order_items WHERE "+where+" ORDER BY created_at ASC, id ASC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateOrder changes the status and/or notes of an order.
func (s *Store) UpdateOrder(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error) {
	querySet := "updated_at = ?"
	queryArgs := []interface{}{s.now()}
	if patch.Status != nil {
		querySet += ", status = ?"
		queryArgs = append(queryArgs, *patch.Status)
	}
	if patch.Notes != nil {
		querySet += ", notes = ?"
		queryArgs = append(queryArgs, *patch.Notes)
	}
	queryArgs = append(queryArgs, id)

	res, err := s.DB.ExecContext(ctx, fmt.Sprintf("UPDATE orders SET %s WHERE id = ?", querySet), queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if err := requireUpdated(ctx, s.DB, res, "orders", id); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// DeleteOrder hard-deletes an order; its items go with it.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = ?", id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}
