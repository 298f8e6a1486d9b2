package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/morskmorsk/personal-item-tracker/internal/model"
)

// CreateLocation creates a new location.
func CreateLocation(ctx context.Context, db *sql.DB, name, description string) (*model.Location, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO locations (name, description) VALUES (?, ?)`,
		name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting location id: %w", err)
	}

	return GetLocation(ctx, db, id)
}

// GetLocation returns a location by ID, or nil if it doesn't exist.
func GetLocation(ctx context.Context, db *sql.DB, id int64) (*model.Location, error) {
	l := &model.Location{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description FROM locations WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}

// ListLocations returns one page of locations ordered by name, plus
// the total location count.
func ListLocations(ctx context.Context, db *sql.DB, limit, offset int) ([]model.Location, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting locations: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description FROM locations ORDER BY name, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Description); err != nil {
			return nil, 0, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, total, rows.Err()
}

// UpdateLocation updates a location's name and description.
func UpdateLocation(ctx context.Context, db *sql.DB, id int64, name, description string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE locations SET name = ?, description = ? WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	return nil
}

// DeleteLocation deletes a location. Items referencing it are removed
// by the ON DELETE CASCADE foreign key; the image keys of those items
// are returned so the caller can release their blobs.
func DeleteLocation(ctx context.Context, db *sql.DB, id int64) ([]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	keys, err := dependentImageKeys(ctx, tx, "location_id", id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting location: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing location delete: %w", err)
	}
	return keys, nil
}
