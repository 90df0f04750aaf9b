package services

import (
	"context"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"

	"github.com/sirupsen/logrus"
)

// WishlistService saves products for later.
type WishlistService struct {
	store    *repositories.Store
	notifier ChangeNotifier
	logger   logrus.FieldLogger
}

func NewWishlistService(store *repositories.Store, notifier ChangeNotifier, logger logrus.FieldLogger) *WishlistService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WishlistService{store: store, notifier: notifierOrNop(notifier), logger: logger}
}

// Toggle adds the product to the user's wishlist, or removes it if already
// there. It reports whether the product is now on the list.
func (s *WishlistService) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, models.ErrUnauthorized
	}

	var added bool
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		removed, err := tx.Wishlist.Remove(ctx, userID, productID)
		if err != nil || removed {
			return err
		}
		if _, err := tx.Products.GetByID(ctx, productID); err != nil {
			return err
		}
		if _, err := tx.Wishlist.Add(ctx, userID, productID); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}

	s.notifier.Changed(ctx, userID, ScopeWishlist)
	return added, nil
}

// List returns the user's saved products, newest first.
func (s *WishlistService) List(ctx context.Context, userID string) ([]*models.WishlistItem, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}
	return s.store.Wishlist.ListByUser(ctx, userID)
}
