package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/models"
)

func catalogColumns(kind models.CatalogKind) string {
	cols := "id, name, description, price, image_url, image_urls, created_at, updated_at"
	if kind.HasCategory() {
		cols += ", category_id"
	}
	return cols
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCatalogItem(kind models.CatalogKind, row rowScanner) (*models.CatalogItem, error) {
	item := &models.CatalogItem{Kind: kind}
	var dbImages []byte
	dest := []interface{}{
		&item.ID, &item.Name, &item.Description, &item.Price,
		&item.ImageURL, &dbImages, &item.CreatedAt, &item.UpdatedAt,
	}
	if kind.HasCategory() {
		dest = append(dest, &item.CategoryID)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	// Always initialize arrays to avoid "null" in JSON
	item.ImageURLs = []string{}
	if len(dbImages) > 0 {
		if err := json.Unmarshal(dbImages, &item.ImageURLs); err != nil {
			return nil, fmt.Errorf("decode image_urls of %s: %w", item.ID, err)
		}
	}
	return item, nil
}

func encodeImageURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	raw, err := json.Marshal(urls)
	return string(raw), err
}

// ListCatalogItems returns every item of a kind, newest first.
func (s *Store) ListCatalogItems(ctx context.Context, kind models.CatalogKind, filter models.CatalogFilter) ([]*models.CatalogItem, error) {
	var qb strings.Builder
	var args []interface{}

	qb.WriteString("SELECT " + catalogColumns(kind) + " FROM " + kind.Table())
	if kind.HasCategory() && filter.CategoryID != "" {
		qb.WriteString(" WHERE category_id = ?")
		args = append(args, filter.CategoryID)
	}
	qb.WriteString(" ORDER BY created_at DESC")

	rows, err := s.DB.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Table(), err)
	}
	defer rows.Close()

	items := []*models.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind.Table(), err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetCatalogItem fetches one item by id.
func (s *Store) GetCatalogItem(ctx context.Context, kind models.CatalogKind, id string) (*models.CatalogItem, error) {
	query := "SELECT " + catalogColumns(kind) + " FROM " + kind.Table() + " WHERE id = ?"
	item, err := scanCatalogItem(kind, s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// CreateCatalogItem inserts item, stamping its timestamps.
func (s *Store) CreateCatalogItem(ctx context.Context, item *models.CatalogItem) error {
	now := s.now()
	item.CreatedAt, item.UpdatedAt = now, now

	imagesJSON, err := encodeImageURLs(item.ImageURLs)
	if err != nil {
		return err
	}

	cols := catalogColumns(item.Kind)
	args := []interface{}{
		item.ID, item.Name, item.Description, item.Price,
		item.ImageURL, imagesJSON, item.CreatedAt, item.UpdatedAt,
	}
	if item.Kind.HasCategory() {
		args = append(args, item.CategoryID)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", item.Kind.Table(), cols, placeholders(len(args)))
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", item.Kind.Table(), err)
	}
	return nil
}

// UpdateCatalogItem applies a sparse patch and returns the stored row.
func (s *Store) UpdateCatalogItem(ctx context.Context, kind models.CatalogKind, id string, patch models.CatalogPatch) (*models.CatalogItem, error) {
	// Dynamically Build UPDATE Query
	querySet := "updated_at = ?"
	queryArgs := []interface{}{s.now()}

	if patch.Name != nil {
		querySet += ", name = ?"
		queryArgs = append(queryArgs, *patch.Name)
	}
	if patch.Description != nil {
		querySet += ", description = ?"
		queryArgs = append(queryArgs, *patch.Description)
	}
	if patch.Price != nil {
		querySet += ", price = ?"
		queryArgs = append(queryArgs, *patch.Price)
	}
	if patch.ImageURL != nil {
		querySet += ", image_url = ?"
		queryArgs = append(queryArgs, *patch.ImageURL)
	}
	if patch.ImageURLs != nil {
		imagesJSON, err := encodeImageURLs(*patch.ImageURLs)
		if err != nil {
			return nil, err
		}
		querySet += ", image_urls = ?"
		queryArgs = append(queryArgs, imagesJSON)
	}
	if patch.CategoryID != nil && kind.HasCategory() {
		querySet += ", category_id = NULLIF(?, '')"
		queryArgs = append(queryArgs, *patch.CategoryID)
	}

	queryArgs = append(queryArgs, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", kind.Table(), querySet)

	res, err := s.DB.ExecContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", kind.Table(), err)
	}
	if err := requireUpdated(ctx, s.DB, res, kind.Table(), id); err != nil {
		return nil, err
	}
	return s.GetCatalogItem(ctx, kind, id)
}

// DeleteCatalogItem hard-deletes one item.
func (s *Store) DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM "+kind.Table()+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind.Table(), err)
	}
	return requireAffected(res)
}
