package models

import "time"

// WishlistItem marks a product saved by a user. (user_id, product_id) is unique.
type WishlistItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty" db:"-"`
}

type WishlistToggleRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}
