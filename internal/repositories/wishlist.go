package repositories

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
)

type WishlistRepository struct {
	db DBTX
}

func NewWishlistRepository(db DBTX) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add saves productID for the user. A second add yields a DuplicateError.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) (*models.WishlistItem, error) {
	item := &models.WishlistItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id, created_at) VALUES ($1, $2, $3, $4)`,
		item.ID, item.UserID, item.ProductID, item.CreatedAt)
	if err != nil {
		return nil, wrapErr("add wishlist item", err, nil)
	}
	return item, nil
}

// Remove deletes the entry and reports whether one existed.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return false, wrapErr("remove wishlist item", err, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("remove wishlist item", err, nil)
	}
	return n > 0, nil
}

// ListByUser returns the user's saved products, newest first.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID string) ([]*models.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.id, w.user_id, w.product_id, w.created_at,
		       p.id, p.category_id, p.name, p.slug, p.description, p.price, p.stock, p.image_url, p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC, w.id`, userID)
	if err != nil {
		return nil, wrapErr("list wishlist", err, nil)
	}
	defer rows.Close()

	var items []*models.WishlistItem
	for rows.Next() {
		item := &models.WishlistItem{Product: &models.Product{}}
		p := item.Product
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt,
			&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.ImageURL,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrapErr("scan wishlist item", err, nil)
		}
		items = append(items, item)
	}
	return items, wrapErr("list wishlist", rows.Err(), nil)
}
