package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/models"
)

const categoryColumns = "c.id, c.name, c.slug, c.type, c.description, c.image_url, c.priority, c.created_at, c.updated_at"

func scanCategory(row rowScanner, extra ...interface{}) (*models.Category, error) {
	var cat models.Category
	dest := append([]interface{}{
		&cat.ID, &cat.Name, &cat.Slug, &cat.Type, &cat.Description,
		&cat.ImageURL, &cat.Priority, &cat.CreatedAt, &cat.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategories returns categories with their product counts,
// ordered by type and then newest first.
func (s *Store) ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	var qb strings.Builder
	var args []interface{}

	qb.WriteString(`
		SELECT ` + categoryColumns + `, COALESCE(pc.cnt, 0)
		FROM categories c
		LEFT JOIN (
			SELECT category_id, COUNT(*) AS cnt FROM products
			WHERE category_id IS NOT NULL GROUP BY category_id
		) pc ON pc.category_id = c.id
		WHERE 1 = 1`)

	if filter.Type != "" {
		qb.WriteString(" AND c.type = ?")
		args = append(args, filter.Type)
	}
	if filter.Priority != "" {
		qb.WriteString(" AND c.priority = ?")
		args = append(args, filter.Priority)
	}
	qb.WriteString(" ORDER BY c.type ASC, c.created_at DESC")

	rows, err := s.DB.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []*models.Category{}
	for rows.Next() {
		var count int
		cat, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.ProductCount = count
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// GetCategory fetches one category with its product count.
func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `,
			(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
		FROM categories c WHERE c.id = ?`
	var count int
	cat, err := scanCategory(s.DB.QueryRowContext(ctx, query, id), &count)
	if err != nil {
		return nil, notFound(err)
	}
	cat.ProductCount = count
	return cat, nil
}

// CategoryNameTaken reports whether another category already uses (name, type).
// excludeID skips the category being renamed.
func (s *Store) CategoryNameTaken(ctx context.Context, name string, kind models.CatalogKind, excludeID string) (bool, error) {
	var taken bool
	err := s.DB.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE name = ? AND type = ? AND id <> ?)",
		name, kind, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return taken, nil
}

// CreateCategory inserts cat. A (name, type) collision returns ErrDuplicate.
func (s *Store) CreateCategory(ctx context.Context, cat *models.Category) error {
	now := s.now()
	cat.CreatedAt, cat.UpdatedAt = now, now

	query := `
		INSERT INTO categories
		(id, name, slug, type, description, image_url, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query,
		cat.ID, cat.Name, cat.Slug, cat.Type, cat.Description,
		cat.ImageURL, cat.Priority, cat.CreatedAt, cat.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// UpdateCategory applies a sparse patch and returns the stored row.
func (s *Store) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	querySet := "updated_at = ?"
	queryArgs := []interface{}{s.now()}

	if patch.Name != nil {
		querySet += ", name = ?"
		queryArgs = append(queryArgs, *patch.Name)
	}
	if patch.Slug != nil {
		querySet += ", slug = ?"
		queryArgs = append(queryArgs, *patch.Slug)
	}
	if patch.Type != nil {
		querySet += ", type = ?"
		queryArgs = append(queryArgs, *patch.Type)
	}
	if patch.Description != nil {
		querySet += ", description = ?"
		queryArgs = append(queryArgs, *patch.Description)
	}
	if patch.ImageURL != nil {
		querySet += ", image_url = ?"
		queryArgs = append(queryArgs, *patch.ImageURL)
	}
	if patch.Priority != nil {
		querySet += ", priority = ?"
		queryArgs = append(queryArgs, *patch.Priority)
	}
	queryArgs = append(queryArgs, id)

	res, err := s.DB.ExecContext(ctx, fmt.Sprintf("UPDATE categories SET %s WHERE id = ?", querySet), queryArgs...)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	if err := requireUpdated(ctx, s.DB, res, "categories", id); err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category and detaches its products.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE products SET category_id = NULL WHERE category_id = ?", id); err != nil {
		return fmt.Errorf("detach products: %w", err)
	}
	return tx.Commit()
}
