package services

import (
	"context"
	"fmt"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderService handles order-related business logic after checkout.
type OrderService struct {
	store    *repositories.Store
	notifier ChangeNotifier
	logger   logrus.FieldLogger
}

// NewOrderService creates a new order service
func NewOrderService(store *repositories.Store, notifier ChangeNotifier, logger logrus.FieldLogger) *OrderService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OrderService{store: store, notifier: notifierOrNop(notifier), logger: logger}
}

// GetOrder returns an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.store.Orders.GetByID(ctx, orderID)
}

// GetUserOrder returns one of the user's orders. Orders of other users are
// reported as not found.
func (s *OrderService) GetUserOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lists orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", models.ErrInvalidInput, filter.Status)
	}
	return s.store.Orders.List(ctx, filter)
}

// UpdateStatus moves an order along its lifecycle. The total is not touched.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", models.ErrInvalidInput, status)
	}

	var order *models.Order
	var from models.OrderStatus
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		var err error
		order, err = tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if !from.CanTransition(status) {
			return fmt.Errorf("%w: %s to %s", models.ErrInvalidTransition, from, status)
		}
		if err := tx.Orders.UpdateStatus(ctx, order.ID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"from":         from,
		"to":           status,
	}).Info("Order status changed")

	s.notifier.Changed(ctx, order.UserID, ScopeOrders)
	return order, nil
}

// CancelOrder cancels one of the user's own orders while it has not shipped.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.GetUserOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelledByCustomer() {
		return nil, fmt.Errorf("%w: order is %s", models.ErrInvalidTransition, order.Status)
	}
	return s.UpdateStatus(ctx, order.ID, models.OrderCancelled)
}

// UpdateOrderItems corrects item quantities. Each changed line is re-priced at
// the unit price derived from its stored total, then the order total is
// re-summed from all lines, in one transaction.
func (s *OrderService) UpdateOrderItems(ctx context.Context, orderID string, changes []models.ItemQuantity) (*models.Order, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no items to update", models.ErrInvalidInput)
	}
	for _, c := range changes {
		if c.Quantity < 1 {
			return nil, models.ErrInvalidQuantity
		}
	}

	var order *models.Order
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		var err error
		order, err = tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return fmt.Errorf("%w: order is %s", models.ErrInvalidTransition, order.Status)
		}

		byID := make(map[string]int, len(order.Items))
		for i, item := range order.Items {
			byID[item.ID] = i
		}

		for _, c := range changes {
			i, ok := byID[c.OrderItemID]
			if !ok {
				return models.ErrOrderItemNotFound
			}
			item := &order.Items[i]
			if item.Quantity == c.Quantity {
				continue
			}
			total := item.Requantify(c.Quantity)
			if err := tx.Orders.UpdateItem(ctx, item.ID, c.Quantity, total); err != nil {
				return err
			}
			item.Quantity, item.TotalPrice = c.Quantity, total
		}

		sum := decimal.Zero
		for _, item := range order.Items {
			sum = sum.Add(item.TotalPrice)
		}
		order.TotalPrice = models.RoundMoney(sum)
		return tx.Orders.UpdateTotal(ctx, order.ID, order.TotalPrice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"changes":  len(changes),
		"total":    order.TotalPrice.StringFixed(models.MoneyScale),
	}).Info("Order items updated")

	s.notifier.Changed(ctx, order.UserID, ScopeOrders)
	return order, nil
}

// DeleteOrder removes an order and its items.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.store.Orders.Delete(ctx, order.ID); err != nil {
		return err
	}
	s.logger.WithField("order_id", order.ID).Info("Order deleted")
	s.notifier.Changed(ctx, order.UserID, ScopeOrders)
	return nil
}
