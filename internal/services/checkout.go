package services

import (
	"context"
	"errors"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CheckoutService turns a cart into an order.
// orderNumberAttempts bounds how often checkout draws a fresh order number
// after a collision on orders.order_number.
const orderNumberAttempts = 5

type CheckoutService struct {
	store       *repositories.Store
	notifier    ChangeNotifier
	logger      logrus.FieldLogger
	orderNumber func() string
}

func NewCheckoutService(store *repositories.Store, notifier ChangeNotifier, logger logrus.FieldLogger) *CheckoutService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CheckoutService{
		store:       store,
		notifier:    notifierOrNop(notifier),
		logger:      logger,
		orderNumber: models.GenerateOrderNumber,
	}
}

// Checkout places an order from the cart and deletes the cart, all in one
// transaction. The order's checkout key is the cart id, so checking out the
// same cart again returns the order that was already placed.
func (s *CheckoutService) Checkout(ctx context.Context, cartID string) (string, error) {
	existing, err := s.store.Orders.GetByCheckoutKey(ctx, cartID)
	switch {
	case err == nil:
		return existing.ID, nil
	case !errors.Is(err, models.ErrNotFound):
		return "", err
	}

	var order *models.Order
	var dup *models.DuplicateError
	for attempt := 1; ; attempt++ {
		order, err = s.placeFromCart(ctx, cartID)
		if !errors.As(err, &dup) || dup.Field != "order_number" || attempt == orderNumberAttempts {
			break
		}
		s.logger.WithFields(logrus.Fields{"cart_id": cartID, "attempt": attempt}).Warn("Order number collision, retrying checkout")
	}

	if errors.As(err, &dup) && dup.Field == "checkout_key" {
		// A concurrent checkout of this cart committed first.
		existing, lookupErr := s.store.Orders.GetByCheckoutKey(ctx, cartID)
		if lookupErr != nil {
			return "", lookupErr
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"items":        len(order.Items),
		"total":        order.TotalPrice.StringFixed(models.MoneyScale),
	}).Info("Order placed")

	s.notifier.Changed(ctx, order.UserID, ScopeCart, ScopeOrders)
	return order.ID, nil
}

// placeFromCart runs one checkout transaction. A failed order insert aborts
// the transaction, so a retry with a new order number starts from scratch.
func (s *CheckoutService) placeFromCart(ctx context.Context, cartID string) (*models.Order, error) {
	var order *models.Order
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		cart, err := tx.Carts.GetByID(ctx, cartID)
		if err != nil {
			return err
		}
		items, err := tx.Carts.ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return models.ErrEmptyCart
		}
		if cart.UserID == "" {
			return models.ErrMissingOwner
		}

		lines, err := s.snapshot(ctx, tx, items)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(line.TotalPrice)
		}
		if !total.Equal(cart.TotalPrice) {
			s.logger.WithFields(logrus.Fields{
				"cart_id":    cart.ID,
				"cart_total": cart.TotalPrice.StringFixed(models.MoneyScale),
				"items_sum":  total.StringFixed(models.MoneyScale),
			}).Warn("Cart total drifted from its items, using the items sum")
		}

		order = &models.Order{
			UserID:      cart.UserID,
			OrderNumber: s.orderNumber(),
			TotalPrice:  total,
			Status:      models.OrderPending,
			CheckoutKey: cart.ID,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := tx.Orders.CreateItem(ctx, &lines[i]); err != nil {
				return err
			}
		}
		order.Items = lines

		if _, err := tx.Carts.DeleteItems(ctx, cart.ID); err != nil {
			return err
		}
		return tx.Carts.Delete(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// snapshot copies the cart lines into order lines. A zero line total is
// re-priced from the product's current price.
func (s *CheckoutService) snapshot(ctx context.Context, tx *repositories.Store, items []models.CartItem) ([]models.OrderItem, error) {
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		lineTotal := item.TotalPrice
		if lineTotal.IsZero() {
			product, err := tx.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			lineTotal = models.LineTotal(product.Price, item.Quantity)
		}
		lines = append(lines, models.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			TotalPrice: lineTotal,
		})
	}
	return lines, nil
}

// PlaceOrder checks out the user's active cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", models.ErrUnauthorized
	}
	cart, err := s.store.Carts.GetByUserID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return "", models.ErrEmptyCart
	}
	if err != nil {
		return "", err
	}
	return s.Checkout(ctx, cart.ID)
}
