package store

import (
	"context"
	"testing"

	"github.com/morskmorsk/personal-item-tracker/internal/db"
)

func TestCreateAndGetCategory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	category, err := CreateCategory(ctx, database, "Tools", "Hand and power tools")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if category.Name != "Tools" {
		t.Errorf("expected name 'Tools', got %q", category.Name)
	}

	got, _ := GetCategory(ctx, database, category.ID)
	if got == nil || got.Description != "Hand and power tools" {
		t.Errorf("expected stored category back, got %+v", got)
	}
}

func TestGetCategoryMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetCategory(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing category, got %+v", got)
	}
}

func TestListCategoriesOrderedByName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateCategory(ctx, database, "Tools", "")
	CreateCategory(ctx, database, "Books", "")
	CreateCategory(ctx, database, "Electronics", "")

	categories, total, err := ListCategories(ctx, database, 100, 0)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	want := []string{"Books", "Electronics", "Tools"}
	for i, name := range want {
		if categories[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, categories[i].Name)
		}
	}
}

func TestListCategoriesPagination(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateCategory(ctx, database, "A", "")
	CreateCategory(ctx, database, "B", "")
	CreateCategory(ctx, database, "C", "")

	page, total, err := ListCategories(ctx, database, 2, 2)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(page) != 1 || page[0].Name != "C" {
		t.Errorf("expected second page [C], got %+v", page)
	}
}

func TestUpdateCategory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	category, _ := CreateCategory(ctx, database, "Tols", "")
	if err := UpdateCategory(ctx, database, category.ID, "Tools", "fixed typo"); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}

	got, _ := GetCategory(ctx, database, category.ID)
	if got.Name != "Tools" || got.Description != "fixed typo" {
		t.Errorf("expected updated category, got %+v", got)
	}
}
