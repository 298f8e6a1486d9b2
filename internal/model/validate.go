package model

import "fmt"

// ValidationError is a field-level rejection of a write request. It is
// always checked before any store mutation, so a rejected request never
// leaves a partial write behind.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateItem checks the pure field constraints on an item. Name
// uniqueness needs a store query and is checked separately.
func ValidateItem(item *Item) *ValidationError {
	if item.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if item.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "quantity cannot be negative"}
	}
	if item.Price != nil && item.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "price cannot be negative"}
	}
	if item.CategoryID == 0 {
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	if item.LocationID == 0 {
		return &ValidationError{Field: "location", Message: "location is required"}
	}
	return nil
}
