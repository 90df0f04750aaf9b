package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a user's in-progress order. TotalPrice and ItemCount are derived
// from the items and maintained on every mutation. Version guards the
// read-modify-write of those fields.
type Cart struct {
	ID         string          `json:"id" db:"id"`
	UserID     string          `json:"user_id" db:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	ItemCount  int             `json:"item_count" db:"item_count"`
	Version    int             `json:"-" db:"version"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
	Items      []CartItem      `json:"items,omitempty"`
}

// CartItem is one product line within a cart. TotalPrice is supplied by the
// caller at mutation time and is not re-priced from the catalog.
type CartItem struct {
	ID         string          `json:"id" db:"id"`
	CartID     string          `json:"cart_id" db:"cart_id"`
	ProductID  string          `json:"product_id" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`

	// Populated by listing queries for display.
	ProductName  string          `json:"product_name,omitempty" db:"-"`
	ProductImage string          `json:"product_image,omitempty" db:"-"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"-"`
}

// ItemsTotal sums the stored line totals.
func (c *Cart) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// ItemsQuantity sums item quantities.
func (c *Cart) ItemsQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no items loaded.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddToCartRequest is the storefront add payload. Price is read from the
// catalog server-side.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type ChangeQuantityRequest struct {
	CartItemID  string `json:"cart_item_id" validate:"required"`
	NewQuantity int    `json:"new_quantity"`
}

type RemoveItemRequest struct {
	CartItemID string `json:"cart_item_id" validate:"required"`
}
