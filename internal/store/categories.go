package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/morskmorsk/personal-item-tracker/internal/model"
)

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db *sql.DB, name, description string) (*model.Category, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (name, description) VALUES (?, ?)`,
		name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID, or nil if it doesn't exist.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns one page of categories ordered by name, plus
// the total category count.
func ListCategories(ctx context.Context, db *sql.DB, limit, offset int) ([]model.Category, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting categories: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description FROM categories ORDER BY name, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, 0, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

// UpdateCategory updates a category's name and description.
func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name, description string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return nil
}

// DeleteCategory deletes a category. Items referencing it are removed
// by the ON DELETE CASCADE foreign key; the image keys of those items
// are returned so the caller can release their blobs.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) ([]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	keys, err := dependentImageKeys(ctx, tx, "category_id", id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing category delete: %w", err)
	}
	return keys, nil
}

// dependentImageKeys collects the non-empty image keys of items whose
// given parent column matches id.
func dependentImageKeys(ctx context.Context, tx *sql.Tx, column string, id int64) ([]string, error) {
	// column is always a compile-time constant ("category_id" or
	// "location_id"), never user input.
	rows, err := tx.QueryContext(ctx,
		`SELECT image_key FROM items WHERE `+column+` = ? AND image_key IS NOT NULL`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("collecting dependent image keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning image key: %w", err)
		}
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys, rows.Err()
}
