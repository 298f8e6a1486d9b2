package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/morskmorsk/personal-item-tracker/internal/db"
	"github.com/morskmorsk/personal-item-tracker/internal/model"
)

// newItemParents creates a category and a location for item tests.
func newItemParents(t *testing.T, database *sql.DB) (categoryID, locationID int64) {
	t.Helper()
	ctx := context.Background()
	category, err := CreateCategory(ctx, database, "Tools", "")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	location, err := CreateLocation(ctx, database, "Garage", "")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	return category.ID, location.ID
}

func price(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad test price %q: %v", s, err)
	}
	return &d
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	item, err := CreateItem(ctx, database, &model.Item{
		Name:        "Hammer",
		Description: "Claw hammer",
		Quantity:    1,
		Price:       price(t, "9.99"),
		CategoryID:  categoryID,
		LocationID:  locationID,
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if item.ID == 0 {
		t.Error("expected server-assigned id")
	}
	if item.DateAdded.IsZero() {
		t.Error("expected server-assigned date_added")
	}
	if item.Price == nil || item.Price.String() != "9.99" {
		t.Errorf("expected price 9.99, got %v", item.Price)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got == nil || got.Name != "Hammer" || got.CategoryID != categoryID {
		t.Errorf("expected stored item back, got %+v", got)
	}
}

func TestCreateItemWithoutPrice(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	item, err := CreateItem(ctx, database, &model.Item{
		Name:        "Mystery Box",
		Quantity:    1,
		CategoryID:  categoryID,
		LocationID:  locationID,
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Price != nil {
		t.Errorf("expected nil price, got %v", item.Price)
	}
}

func TestItemNameTaken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	item, _ := CreateItem(ctx, database, &model.Item{
		Name: "Hammer", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})

	taken, err := ItemNameTaken(ctx, database, "Hammer", 0)
	if err != nil {
		t.Fatalf("ItemNameTaken: %v", err)
	}
	if !taken {
		t.Error("expected 'Hammer' to be taken for a new item")
	}

	// The record being updated is excluded from the check.
	taken, _ = ItemNameTaken(ctx, database, "Hammer", item.ID)
	if taken {
		t.Error("expected 'Hammer' to be free when excluding its own record")
	}

	taken, _ = ItemNameTaken(ctx, database, "Wrench", 0)
	if taken {
		t.Error("expected 'Wrench' to be free")
	}
}

func TestUpdateItemKeepsDateAdded(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	item, _ := CreateItem(ctx, database, &model.Item{
		Name: "Hammer", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})

	updated := *item
	updated.Name = "Sledgehammer"
	updated.Quantity = 2
	if err := UpdateItem(ctx, database, &updated); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Name != "Sledgehammer" || got.Quantity != 2 {
		t.Errorf("expected updated item, got %+v", got)
	}
	if !got.DateAdded.Equal(item.DateAdded) {
		t.Errorf("date_added changed on update: %v -> %v", item.DateAdded, got.DateAdded)
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)
	other, _ := CreateCategory(ctx, database, "Books", "")

	CreateItem(ctx, database, &model.Item{
		Name: "Hammer", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Wrench", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: false,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Novel", Quantity: 1, CategoryID: other.ID, LocationID: locationID, IsAvailable: true,
	})

	all, total, err := ListItems(ctx, database, &ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("expected 3 items, got total=%d len=%d", total, len(all))
	}

	byCategory, total, _ := ListItems(ctx, database, &ItemFilter{CategoryID: &categoryID})
	if total != 2 || len(byCategory) != 2 {
		t.Errorf("expected 2 tools, got total=%d len=%d", total, len(byCategory))
	}

	// Filters intersect, not union.
	available := true
	both, total, _ := ListItems(ctx, database, &ItemFilter{CategoryID: &categoryID, Available: &available})
	if total != 1 || both[0].Name != "Hammer" {
		t.Errorf("expected only Hammer, got total=%d %+v", total, both)
	}
}

func TestListItemsSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	CreateItem(ctx, database, &model.Item{
		Name: "Claw Hammer", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Wrench", Description: "ball-peen hammer replacement",
		Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Novel", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})

	// Case-insensitive, matches name or description.
	found, total, err := ListItems(ctx, database, &ItemFilter{Search: "HAMMER"})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 2 || len(found) != 2 {
		t.Errorf("expected 2 matches for 'HAMMER', got total=%d len=%d", total, len(found))
	}
}

func TestListItemsOrdering(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	CreateItem(ctx, database, &model.Item{
		Name: "Wrench", Price: price(t, "19.99"), Quantity: 1,
		CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Hammer", Price: price(t, "9.99"), Quantity: 1,
		CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Anvil", Price: price(t, "109.99"), Quantity: 1,
		CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})

	byName, _, _ := ListItems(ctx, database, &ItemFilter{Ordering: "name"})
	if byName[0].Name != "Anvil" || byName[2].Name != "Wrench" {
		t.Errorf("expected name ascending, got %s..%s", byName[0].Name, byName[2].Name)
	}

	// Numeric, not lexicographic: 109.99 sorts above 19.99.
	byPrice, _, _ := ListItems(ctx, database, &ItemFilter{Ordering: "-price"})
	if byPrice[0].Name != "Anvil" {
		t.Errorf("expected Anvil first by -price, got %s", byPrice[0].Name)
	}

	defaulted, _, _ := ListItems(ctx, database, &ItemFilter{})
	if defaulted[0].Name != "Anvil" {
		t.Errorf("expected newest first by default, got %s", defaulted[0].Name)
	}
}

func TestListItemsPagination(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	names := []string{"A", "B", "C", "D", "E"}
	for _, name := range names {
		CreateItem(ctx, database, &model.Item{
			Name: name, Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
		})
	}

	page, total, err := ListItems(ctx, database, &ItemFilter{Ordering: "name", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5 regardless of page, got %d", total)
	}
	if len(page) != 2 || page[0].Name != "C" || page[1].Name != "D" {
		t.Errorf("expected page [C D], got %+v", page)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	item, _ := CreateItem(ctx, database, &model.Item{
		Name: "Hammer", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got != nil {
		t.Errorf("expected item gone after delete, got %+v", got)
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	CreateItem(ctx, database, &model.Item{
		Name: "Hammer", Quantity: 1, CategoryID: categoryID, LocationID: locationID,
		IsAvailable: true, ImageKey: "hammer.jpg",
	})
	CreateItem(ctx, database, &model.Item{
		Name: "Wrench", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})

	keys, err := DeleteCategory(ctx, database, categoryID)
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	// Both dependent items are gone, and the one stored image key was
	// reported for blob cleanup.
	_, total, _ := ListItems(ctx, database, &ItemFilter{})
	if total != 0 {
		t.Errorf("expected 0 items after cascade, got %d", total)
	}
	if len(keys) != 1 || keys[0] != "hammer.jpg" {
		t.Errorf("expected [hammer.jpg] image keys, got %v", keys)
	}
}

func TestDeleteLocationCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	categoryID, locationID := newItemParents(t, database)

	CreateItem(ctx, database, &model.Item{
		Name: "Hammer", Quantity: 1, CategoryID: categoryID, LocationID: locationID, IsAvailable: true,
	})

	if _, err := DeleteLocation(ctx, database, locationID); err != nil {
		t.Fatalf("DeleteLocation: %v", err)
	}

	_, total, _ := ListItems(ctx, database, &ItemFilter{})
	if total != 0 {
		t.Errorf("expected 0 items after cascade, got %d", total)
	}
}
