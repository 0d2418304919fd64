package models

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategorySummary is the category reference embedded in a product
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryInput is the body of category create and update requests
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}
