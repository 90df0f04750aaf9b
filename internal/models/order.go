package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// statusRank orders the forward lifecycle. Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// Order is created from a cart at checkout. Only its status and, through the
// admin item edit, its item quantities change afterwards.
type Order struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	OrderNumber string          `json:"order_number" db:"order_number"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	Status      OrderStatus     `json:"status" db:"status"`
	CheckoutKey string          `json:"-" db:"checkout_key"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Items       []OrderItem     `json:"items,omitempty"`
}

// OrderItem is a snapshot of a cart line at checkout time.
type OrderItem struct {
	ID         string          `json:"id" db:"id"`
	OrderID    string          `json:"order_id" db:"order_id"`
	ProductID  string          `json:"product_id" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`

	ProductName string `json:"product_name,omitempty" db:"-"`
}

// ItemQuantity is one line of an admin quantity correction.
type ItemQuantity struct {
	OrderItemID string `json:"order_item_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=1"`
}

type UpdateOrderStatusRequest struct {
	ID     string      `json:"id" validate:"required"`
	Status OrderStatus `json:"status" validate:"required,oneof=Pending Processing Shipped Delivered Cancelled"`
}

type UpdateOrderItemsRequest struct {
	ID    string         `json:"id" validate:"required"`
	Items []ItemQuantity `json:"items" validate:"required,min=1,dive"`
}

var orderNumberRegex = regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == OrderCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next. The
// lifecycle only moves forward (skipping ahead is allowed) and Cancelled is
// reachable from any non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.IsTerminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// ItemsTotal sums the order's line totals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// CanBeCancelledByCustomer reports whether the storefront may cancel it.
func (o *Order) CanBeCancelledByCustomer() bool {
	return o.Status == OrderPending || o.Status == OrderProcessing
}

// UnitPrice back-derives the unit price from the stored line total, rounded
// to cents.
func (i *OrderItem) UnitPrice() decimal.Decimal {
	if i.Quantity <= 0 {
		return decimal.Zero
	}
	return RoundMoney(i.TotalPrice.Div(decimal.NewFromInt(int64(i.Quantity))))
}

// Requantify returns the line total for a new quantity priced at the item's
// back-derived unit price.
func (i *OrderItem) Requantify(quantity int) decimal.Decimal {
	return LineTotal(i.UnitPrice(), quantity)
}

// ValidOrderNumber checks the ORD-YYYYMMDD-NNNNNN format.
func ValidOrderNumber(n string) bool {
	return orderNumberRegex.MatchString(n)
}

// GenerateOrderNumber generates a human-facing order reference
func GenerateOrderNumber() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	max := big.NewInt(1000000)
	randomNum, err := rand.Int(rand.Reader, max)
	if err != nil {
		return fmt.Sprintf("ORD-%s-%06d", dateStr, now.UnixNano()%1000000)
	}

	return fmt.Sprintf("ORD-%s-%06d", dateStr, randomNum.Int64())
}
