package model

// Category groups items by kind (e.g. "Tools", "Books").
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
