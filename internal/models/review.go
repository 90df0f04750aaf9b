package models

import (
	"errors"
	"time"
)

// Review is a user's rating of a product.
type Review struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Author string `json:"author,omitempty" db:"-"`
}

type ReviewCreateRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

type ReviewUpdateRequest struct {
	ID      string `json:"id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Validate validates the review data
func (r *Review) Validate() error {
	if r.ProductID == "" {
		return errors.New("product is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if len(r.Comment) > 2000 {
		return errors.New("comment must be less than 2000 characters")
	}
	return nil
}
