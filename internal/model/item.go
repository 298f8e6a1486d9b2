package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a single tracked possession. Every item belongs to
// exactly one category and one location; deleting either parent deletes
// the item.
type Item struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
	DateAdded   time.Time        `json:"date_added"`
	CategoryID  int64            `json:"category"`
	LocationID  int64            `json:"location"`
	IsAvailable bool             `json:"is_available"`
	ImageKey    string           `json:"image,omitempty"`
	Barcode     string           `json:"barcode,omitempty"`
}

// GroupCount is one row of a grouped item summary: a category or
// location name and how many items fall under it.
type GroupCount struct {
	Name  string
	Count int
}
