package repositories

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartRepository handles carts and their line items.
type CartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) *CartRepository {
	return &CartRepository{db: db}
}

const cartColumns = `id, COALESCE(user_id, ''), total_price, item_count, version, created_at, updated_at`

func scanCart(row rowScanner) (*models.Cart, error) {
	c := &models.Cart{}
	err := row.Scan(&c.ID, &c.UserID, &c.TotalPrice, &c.ItemCount, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts an empty cart for the user.
func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cart.CreatedAt, cart.UpdatedAt = now, now
	cart.TotalPrice = models.RoundMoney(cart.TotalPrice)

	var userID interface{}
	if cart.UserID != "" {
		userID = cart.UserID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, total_price, item_count, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cart.ID, userID, cart.TotalPrice, cart.ItemCount, cart.Version, cart.CreatedAt, cart.UpdatedAt)
	return wrapErr("create cart", err, nil)
}

func (r *CartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	cart, err := scanCart(r.db.QueryRowContext(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("get cart", err, models.ErrCartNotFound)
	}
	return cart, nil
}

// GetByUserID returns the user's active cart: the most recently created one.
func (r *CartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := scanCart(r.db.QueryRowContext(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT 1`, userID))
	if err != nil {
		return nil, wrapErr("get cart by user", err, models.ErrCartNotFound)
	}
	return cart, nil
}

// UpdateTotals writes the derived totals if the cart is still at version. A
// lost race returns models.ErrConflict.
func (r *CartRepository) UpdateTotals(ctx context.Context, cartID string, version int, total decimal.Decimal, itemCount int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE carts
		SET total_price = $1, item_count = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`,
		models.RoundMoney(total), itemCount, time.Now().UTC(), cartID, version)
	if err != nil {
		return wrapErr("update cart totals", err, nil)
	}
	return requireAffected("update cart totals", res, models.ErrConflict)
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete cart", err, nil)
	}
	return requireAffected("delete cart", res, models.ErrCartNotFound)
}

const cartItemColumns = `ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.total_price, ci.created_at, ci.updated_at`

func scanCartItem(row rowScanner) (*models.CartItem, error) {
	i := &models.CartItem{}
	err := row.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.TotalPrice, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// ListItems returns the cart's lines with product display fields.
func (r *CartRepository) ListItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+cartItemColumns+`, COALESCE(p.name, ''), COALESCE(p.image_url, '')
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`, cartID)
	if err != nil {
		return nil, wrapErr("list cart items", err, nil)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var i models.CartItem
		if err := rows.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.TotalPrice, &i.CreatedAt, &i.UpdatedAt,
			&i.ProductName, &i.ProductImage); err != nil {
			return nil, wrapErr("scan cart item", err, nil)
		}
		if i.Quantity > 0 {
			i.UnitPrice = models.RoundMoney(i.TotalPrice.Div(decimal.NewFromInt(int64(i.Quantity))))
		}
		items = append(items, i)
	}
	return items, wrapErr("list cart items", rows.Err(), nil)
}

func (r *CartRepository) GetItem(ctx context.Context, itemID string) (*models.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRowContext(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items ci WHERE ci.id = $1`, itemID))
	if err != nil {
		return nil, wrapErr("get cart item", err, models.ErrCartItemNotFound)
	}
	return item, nil
}

// FindItem looks up the line for productID in the cart.
func (r *CartRepository) FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRowContext(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items ci WHERE ci.cart_id = $1 AND ci.product_id = $2`,
		cartID, productID))
	if err != nil {
		return nil, wrapErr("find cart item", err, models.ErrCartItemNotFound)
	}
	return item, nil
}

func (r *CartRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	item.TotalPrice = models.RoundMoney(item.TotalPrice)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.TotalPrice, item.CreatedAt, item.UpdatedAt)
	return wrapErr("create cart item", err, nil)
}

// UpdateItem writes quantity and line total.
func (r *CartRepository) UpdateItem(ctx context.Context, item *models.CartItem) error {
	item.UpdatedAt = time.Now().UTC()
	item.TotalPrice = models.RoundMoney(item.TotalPrice)
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $1, total_price = $2, updated_at = $3
		WHERE id = $4`,
		item.Quantity, item.TotalPrice, item.UpdatedAt, item.ID)
	if err != nil {
		return wrapErr("update cart item", err, nil)
	}
	return requireAffected("update cart item", res, models.ErrCartItemNotFound)
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return wrapErr("delete cart item", err, nil)
	}
	return requireAffected("delete cart item", res, models.ErrCartItemNotFound)
}

// DeleteItems removes every line of the cart and reports how many went.
func (r *CartRepository) DeleteItems(ctx context.Context, cartID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, wrapErr("delete cart items", err, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("delete cart items", err, nil)
	}
	return n, nil
}

// ItemsByProduct returns every cart line holding productID, across carts.
func (r *CartRepository) ItemsByProduct(ctx context.Context, productID string) ([]*models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items ci WHERE ci.product_id = $1 ORDER BY ci.cart_id, ci.id`, productID)
	if err != nil {
		return nil, wrapErr("list cart items by product", err, nil)
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, wrapErr("scan cart item", err, nil)
		}
		items = append(items, item)
	}
	return items, wrapErr("list cart items by product", rows.Err(), nil)
}
