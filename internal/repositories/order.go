package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository handles order data operations
type OrderRepository struct {
	db DBTX
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	Limit  int
	Offset int
}

const orderColumns = `id, user_id, order_number, total_price, status, checkout_key, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.TotalPrice, &o.Status, &o.CheckoutKey,
		&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Create inserts the order row only. Items are added with CreateItem. A
// caller-supplied order number must be in the ORD-YYYYMMDD-NNNNNN format.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.OrderNumber == "" {
		order.OrderNumber = models.GenerateOrderNumber()
	} else if !models.ValidOrderNumber(order.OrderNumber) {
		return fmt.Errorf("%w: malformed order number %q", models.ErrInvalidInput, order.OrderNumber)
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	if order.CheckoutKey == "" {
		order.CheckoutKey = order.ID
	}
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	order.TotalPrice = models.RoundMoney(order.TotalPrice)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID, order.UserID, order.OrderNumber, order.TotalPrice, order.Status, order.CheckoutKey,
		order.CreatedAt, order.UpdatedAt)
	return wrapErr("create order", err, nil)
}

func (r *OrderRepository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()
	item.TotalPrice = models.RoundMoney(item.TotalPrice)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.TotalPrice, item.CreatedAt)
	return wrapErr("create order item", err, nil)
}

// GetByID retrieves an order with its items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("get order", err, models.ErrOrderNotFound)
	}
	if order.Items, err = r.ListItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByCheckoutKey finds the order placed from a given cart.
func (r *OrderRepository) GetByCheckoutKey(ctx context.Context, key string) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE checkout_key = $1`, key))
	if err != nil {
		return nil, wrapErr("get order by checkout key", err, models.ErrOrderNotFound)
	}
	return order, nil
}

// List returns orders newest first, without items.
func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID != "" {
		where = append(where, "user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := clampPage(filter.Limit, filter.Offset)
	query += " ORDER BY created_at DESC, id LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list orders", err, nil)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, wrapErr("scan order", err, nil)
		}
		orders = append(orders, order)
	}
	return orders, wrapErr("list orders", rows.Err(), nil)
}

// ListItems returns the order's lines with product names where the product
// still exists.
func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.total_price, oi.created_at, COALESCE(p.name, '')
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at, oi.id`, orderID)
	if err != nil {
		return nil, wrapErr("list order items", err, nil)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var i models.OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.Quantity, &i.TotalPrice, &i.CreatedAt, &i.ProductName); err != nil {
			return nil, wrapErr("scan order item", err, nil)
		}
		items = append(items, i)
	}
	return items, wrapErr("list order items", rows.Err(), nil)
}

// UpdateStatus changes the status field only.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return wrapErr("update order status", err, nil)
	}
	return requireAffected("update order status", res, models.ErrOrderNotFound)
}

// UpdateItem writes a corrected quantity and line total.
func (r *OrderRepository) UpdateItem(ctx context.Context, itemID string, quantity int, total decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `UPDATE order_items SET quantity = $1, total_price = $2 WHERE id = $3`,
		quantity, models.RoundMoney(total), itemID)
	if err != nil {
		return wrapErr("update order item", err, nil)
	}
	return requireAffected("update order item", res, models.ErrOrderItemNotFound)
}

func (r *OrderRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET total_price = $1, updated_at = $2 WHERE id = $3`,
		models.RoundMoney(total), time.Now().UTC(), id)
	if err != nil {
		return wrapErr("update order total", err, nil)
	}
	return requireAffected("update order total", res, models.ErrOrderNotFound)
}

// Delete removes an order and its items.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return wrapErr("delete order items", err, nil)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete order", err, nil)
	}
	return requireAffected("delete order", res, models.ErrOrderNotFound)
}
