package model

// Location is a physical place where items are kept (e.g. "Garage").
type Location struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
