package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/morskmorsk/personal-item-tracker/internal/model"
)

// ItemFilter narrows item listings and aggregations. Zero values mean
// "no constraint". Limit <= 0 disables pagination.
type ItemFilter struct {
	CategoryID *int64
	LocationID *int64
	Available  *bool
	Search     string
	Ordering   string
	Limit      int
	Offset     int
}

// itemOrderings maps the public ordering names to ORDER BY clauses.
// The id tiebreak keeps pagination stable when timestamps collide.
var itemOrderings = map[string]string{
	"name":        "items.name ASC, items.id ASC",
	"-name":       "items.name DESC, items.id DESC",
	"price":       "CAST(items.price AS REAL) ASC, items.id ASC",
	"-price":      "CAST(items.price AS REAL) DESC, items.id DESC",
	"date_added":  "items.date_added ASC, items.id ASC",
	"-date_added": "items.date_added DESC, items.id DESC",
}

// ValidOrdering reports whether s is an accepted ordering parameter.
func ValidOrdering(s string) bool {
	_, ok := itemOrderings[s]
	return ok
}

// where builds the WHERE clause and arguments for the filter. Columns
// are qualified with the items table name so the clause also works in
// the aggregation joins.
func (f *ItemFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.CategoryID != nil {
		conds = append(conds, "items.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.LocationID != nil {
		conds = append(conds, "items.location_id = ?")
		args = append(args, *f.LocationID)
	}
	if f.Available != nil {
		conds = append(conds, "items.is_available = ?")
		args = append(args, *f.Available)
	}
	if f.Search != "" {
		conds = append(conds,
			"(instr(lower(items.name), lower(?)) > 0 OR instr(lower(items.description), lower(?)) > 0)")
		args = append(args, f.Search, f.Search)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (f *ItemFilter) orderBy() string {
	if clause, ok := itemOrderings[f.Ordering]; ok {
		return " ORDER BY " + clause
	}
	// Default: newest first.
	return " ORDER BY " + itemOrderings["-date_added"]
}

const itemColumns = `items.id, items.name, items.description, items.quantity, items.price,
	items.date_added, items.category_id, items.location_id, items.is_available,
	items.image_key, items.barcode`

func scanItem(scan func(dest ...any) error) (*model.Item, error) {
	item := &model.Item{}
	var price, imageKey, barcode sql.NullString
	err := scan(&item.ID, &item.Name, &item.Description, &item.Quantity, &price,
		&item.DateAdded, &item.CategoryID, &item.LocationID, &item.IsAvailable,
		&imageKey, &barcode)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		d, err := decimal.NewFromString(price.String)
		if err != nil {
			return nil, fmt.Errorf("parsing stored price %q: %w", price.String, err)
		}
		item.Price = &d
	}
	item.ImageKey = imageKey.String
	item.Barcode = barcode.String
	return item, nil
}

// priceArg converts an optional price to its SQL representation.
func priceArg(price *decimal.Decimal) any {
	if price == nil {
		return nil
	}
	return price.String()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateItem inserts a new item and returns the stored record with its
// server-assigned id and date_added.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, quantity, price, category_id, location_id,
		                    is_available, image_key, barcode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Quantity, priceArg(item.Price),
		item.CategoryID, item.LocationID, item.IsAvailable,
		nullableString(item.ImageKey), nullableString(item.Barcode),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it doesn't exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE items.id = ?`, id,
	)
	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns one page of items matching the filter, plus the
// total number of matches before pagination.
func ListItems(ctx context.Context, db *sql.DB, filter *ItemFilter) ([]model.Item, int, error) {
	where, args := filter.where()

	var total int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	query := `SELECT ` + itemColumns + ` FROM items` + where + filter.orderBy()
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// ItemNameTaken reports whether another item already uses the given
// name. The check is an explicit "name matches, id differs" query;
// excludeID is the id of the record being updated (0 on create, so no
// row is excluded).
func ItemNameTaken(ctx context.Context, db *sql.DB, name string, excludeID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE name = ? AND id != ?`,
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking item name: %w", err)
	}
	return count > 0, nil
}

// UpdateItem persists every mutable field of an item. date_added is
// set once at creation and never written here.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, quantity = ?, price = ?,
		        category_id = ?, location_id = ?, is_available = ?, image_key = ?, barcode = ?
		 WHERE id = ?`,
		item.Name, item.Description, item.Quantity, priceArg(item.Price),
		item.CategoryID, item.LocationID, item.IsAvailable,
		nullableString(item.ImageKey), nullableString(item.Barcode), item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item row.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
