package services

import (
	"context"
	"errors"
	"fmt"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultCartAttempts is how many times a cart mutation runs before a lost
// compare-and-swap is reported as models.ErrConflict.
const DefaultCartAttempts = 3

// CartService keeps cart.total_price and cart.item_count in step with the
// cart's lines. Every mutation runs in one transaction and commits the cart
// row with a version check.
type CartService struct {
	store    *repositories.Store
	notifier ChangeNotifier
	logger   logrus.FieldLogger
	attempts int
}

func NewCartService(store *repositories.Store, notifier ChangeNotifier, logger logrus.FieldLogger) *CartService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CartService{
		store:    store,
		notifier: notifierOrNop(notifier),
		logger:   logger,
		attempts: DefaultCartAttempts,
	}
}

// mutate runs fn in a transaction, retrying when the cart row moved underneath it.
func (s *CartService) mutate(ctx context.Context, fn func(tx *repositories.Store) error) error {
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = s.store.InTx(ctx, fn)
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		s.logger.WithField("attempt", attempt).Debug("Cart update conflicted")
	}
	return err
}

// AddOrIncrementItem adds one unit of productID at unitPrice to the cart.
func (s *CartService) AddOrIncrementItem(ctx context.Context, cartID, productID string, unitPrice decimal.Decimal) (*models.CartItem, error) {
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", models.ErrInvalidInput)
	}

	var item *models.CartItem
	var userID string
	err := s.mutate(ctx, func(tx *repositories.Store) error {
		cart, err := tx.Carts.GetByID(ctx, cartID)
		if err != nil {
			return err
		}
		userID = cart.UserID
		item, err = addOrIncrement(ctx, tx, cart, productID, unitPrice)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Changed(ctx, userID, ScopeCart)
	return item, nil
}

func addOrIncrement(ctx context.Context, tx *repositories.Store, cart *models.Cart, productID string, unitPrice decimal.Decimal) (*models.CartItem, error) {
	item, err := tx.Carts.FindItem(ctx, cart.ID, productID)
	switch {
	case err == nil:
		oldLine := item.TotalPrice
		item.Quantity++
		item.TotalPrice = models.LineTotal(unitPrice, item.Quantity)
		if err := tx.Carts.UpdateItem(ctx, item); err != nil {
			return nil, err
		}
		total := cart.TotalPrice.Add(item.TotalPrice.Sub(oldLine))
		return item, tx.Carts.UpdateTotals(ctx, cart.ID, cart.Version, models.ClampNonNegative(total), cart.ItemCount+1)

	case errors.Is(err, models.ErrNotFound):
		item = &models.CartItem{
			CartID:     cart.ID,
			ProductID:  productID,
			Quantity:   1,
			TotalPrice: models.RoundMoney(unitPrice),
		}
		if err := tx.Carts.CreateItem(ctx, item); err != nil {
			var dup *models.DuplicateError
			if errors.As(err, &dup) {
				// Another request created the line first.
				return nil, models.ErrConflict
			}
			return nil, err
		}
		total := cart.TotalPrice.Add(item.TotalPrice)
		return item, tx.Carts.UpdateTotals(ctx, cart.ID, cart.Version, total, cart.ItemCount+1)

	default:
		return nil, err
	}
}

// ChangeQuantity sets a line to newQuantity at unitPrice. Quantities below 1
// are rejected before the store is touched. The stored line is authoritative:
// oldQuantity is the caller's view and only logged when stale.
func (s *CartService) ChangeQuantity(ctx context.Context, cartItemID string, newQuantity int, unitPrice decimal.Decimal, oldQuantity int) (*models.CartItem, error) {
	if newQuantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", models.ErrInvalidInput)
	}

	var item *models.CartItem
	var userID string
	err := s.mutate(ctx, func(tx *repositories.Store) error {
		var err error
		item, err = tx.Carts.GetItem(ctx, cartItemID)
		if err != nil {
			return err
		}
		cart, err := tx.Carts.GetByID(ctx, item.CartID)
		if err != nil {
			return err
		}
		userID = cart.UserID

		if item.Quantity != oldQuantity {
			s.logger.WithFields(logrus.Fields{
				"cart_item_id": item.ID,
				"stored":       item.Quantity,
				"caller":       oldQuantity,
			}).Debug("Stale quantity in change request")
		}

		oldLine, oldQty := item.TotalPrice, item.Quantity
		item.Quantity = newQuantity
		item.TotalPrice = models.LineTotal(unitPrice, newQuantity)
		if err := tx.Carts.UpdateItem(ctx, item); err != nil {
			return err
		}

		total := models.ClampNonNegative(cart.TotalPrice.Add(item.TotalPrice.Sub(oldLine)))
		count := cart.ItemCount + newQuantity - oldQty
		if count < 0 {
			count = 0
		}
		return tx.Carts.UpdateTotals(ctx, cart.ID, cart.Version, total, count)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Changed(ctx, userID, ScopeCart)
	return item, nil
}

// RemoveItem deletes a line and takes its total off the cart, flooring the
// cart total at zero. The stored line total is authoritative over lineTotal.
func (s *CartService) RemoveItem(ctx context.Context, cartItemID string, lineTotal decimal.Decimal) error {
	var userID string
	err := s.mutate(ctx, func(tx *repositories.Store) error {
		item, err := tx.Carts.GetItem(ctx, cartItemID)
		if err != nil {
			return err
		}
		cart, err := tx.Carts.GetByID(ctx, item.CartID)
		if err != nil {
			return err
		}
		userID = cart.UserID

		if !item.TotalPrice.Equal(lineTotal) {
			s.logger.WithFields(logrus.Fields{
				"cart_item_id": item.ID,
				"stored":       item.TotalPrice.StringFixed(models.MoneyScale),
				"caller":       lineTotal.StringFixed(models.MoneyScale),
			}).Debug("Stale line total in remove request")
		}

		if err := tx.Carts.DeleteItem(ctx, item.ID); err != nil {
			return err
		}

		total := models.ClampNonNegative(cart.TotalPrice.Sub(item.TotalPrice))
		count := cart.ItemCount - item.Quantity
		if count < 0 {
			count = 0
		}
		return tx.Carts.UpdateTotals(ctx, cart.ID, cart.Version, total, count)
	})
	if err != nil {
		return err
	}

	s.notifier.Changed(ctx, userID, ScopeCart)
	return nil
}

// GetCart returns the user's active cart with its lines.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.store.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items, err = s.store.Carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddToCart adds one unit of a product at its current catalog price to the
// user's active cart, creating the cart on first use.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}

	err := s.mutate(ctx, func(tx *repositories.Store) error {
		product, err := tx.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.InStock() {
			return fmt.Errorf("%w: %s is out of stock", models.ErrInvalidInput, product.Name)
		}

		cart, err := tx.Carts.GetByUserID(ctx, userID)
		if errors.Is(err, models.ErrNotFound) {
			cart = &models.Cart{UserID: userID}
			err = tx.Carts.Create(ctx, cart)
		}
		if err != nil {
			return err
		}

		_, err = addOrIncrement(ctx, tx, cart, product.ID, product.Price)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Changed(ctx, userID, ScopeCart)
	return s.GetCart(ctx, userID)
}

// UpdateQuantity is ChangeQuantity for a line of the user's own cart, priced
// at the product's current catalog price.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, cartItemID string, newQuantity int) (*models.Cart, error) {
	if newQuantity < 1 {
		return nil, models.ErrInvalidQuantity
	}

	item, err := s.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return nil, err
	}

	unitPrice := item.UnitPrice
	product, err := s.store.Products.GetByID(ctx, item.ProductID)
	switch {
	case err == nil:
		unitPrice = product.Price
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	if _, err := s.ChangeQuantity(ctx, item.ID, newQuantity, unitPrice, item.Quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Remove is RemoveItem for a line of the user's own cart.
func (s *CartService) Remove(ctx context.Context, userID, cartItemID string) (*models.Cart, error) {
	item, err := s.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return nil, err
	}
	if err := s.RemoveItem(ctx, item.ID, item.TotalPrice); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// ownedItem loads a line and hides lines of other users' carts.
func (s *CartService) ownedItem(ctx context.Context, userID, cartItemID string) (*models.CartItem, error) {
	item, err := s.store.Carts.GetItem(ctx, cartItemID)
	if err != nil {
		return nil, err
	}
	cart, err := s.store.Carts.GetByID(ctx, item.CartID)
	if err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, models.ErrCartItemNotFound
	}
	if item.Quantity > 0 {
		item.UnitPrice = models.RoundMoney(item.TotalPrice.Div(decimal.NewFromInt(int64(item.Quantity))))
	}
	return item, nil
}

// ClearCart deletes the user's active cart and its lines.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		cart, err := tx.Carts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := tx.Carts.DeleteItems(ctx, cart.ID); err != nil {
			return err
		}
		return tx.Carts.Delete(ctx, cart.ID)
	})
	if err != nil {
		return err
	}

	s.notifier.Changed(ctx, userID, ScopeCart)
	return nil
}
