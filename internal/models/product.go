package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is the current unit price; cart and order
// lines keep their own totals once created.
type Product struct {
	ID          string          `json:"id" db:"id"`
	CategoryID  string          `json:"category_id" db:"category_id"`
	Name        string          `json:"name" db:"name"`
	Slug        string          `json:"slug" db:"slug"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type ProductCreateRequest struct {
	CategoryID  string          `json:"category_id" validate:"required"`
	Name        string          `json:"name" validate:"required,max=200"`
	Slug        string          `json:"slug" validate:"omitempty,max=100"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=500"`
}

type ProductUpdateRequest struct {
	ID          string          `json:"id" validate:"required"`
	CategoryID  string          `json:"category_id" validate:"required"`
	Name        string          `json:"name" validate:"required,max=200"`
	Slug        string          `json:"slug" validate:"omitempty,max=100"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=500"`
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	CategoryID string `json:"category_id"`
	Search     string `json:"search"`
	Limit      int    `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int    `json:"offset" validate:"omitempty,min=0"`
}

// Validate validates the product data
func (p *Product) Validate() error {
	if p.Name == "" {
		return errors.New("product name is required")
	}
	if err := validateSlug(p.Slug); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if p.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	return nil
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
