package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/morskmorsk/personal-item-tracker/internal/model"
)

// CountItemsByCategory returns item counts grouped by category name.
// The filter applies the same constraints as the item listing, so a
// filtered list and its summary always agree. Categories with no
// matching items never appear: the query starts from items.
func CountItemsByCategory(ctx context.Context, db *sql.DB, filter *ItemFilter) ([]model.GroupCount, error) {
	return groupedCounts(ctx, db, filter, "categories", "category_id")
}

// CountItemsByLocation is the location-grouped counterpart of
// CountItemsByCategory.
func CountItemsByLocation(ctx context.Context, db *sql.DB, filter *ItemFilter) ([]model.GroupCount, error) {
	return groupedCounts(ctx, db, filter, "locations", "location_id")
}

func groupedCounts(ctx context.Context, db *sql.DB, filter *ItemFilter, table, column string) ([]model.GroupCount, error) {
	where, args := filter.where()

	// table and column are compile-time constants, never user input.
	query := `SELECT g.name, COUNT(*) FROM items
	          JOIN ` + table + ` g ON g.id = items.` + column +
		where + ` GROUP BY g.name ORDER BY g.name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grouping items by %s: %w", table, err)
	}
	defer rows.Close()

	var groups []model.GroupCount
	for rows.Next() {
		var g model.GroupCount
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return nil, fmt.Errorf("scanning group count: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
