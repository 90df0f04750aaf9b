// Package server wires the services, middleware and procedures of the
// storefront and dashboard applications.
package server

import (
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"
	"ecommerce-platform/internal/utils"

	"github.com/sirupsen/logrus"
)

// Services is the service layer shared by both applications.
type Services struct {
	Store    *repositories.Store
	Auth     *services.AuthService
	Accounts *services.AccountService
	Catalog  *services.CatalogService
	Carts    *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Wishlist *services.WishlistService
	Images   *services.ImageService
	Cleanup  *services.ImageCleanupService
}

// NewServices builds every service over store and blobs. Change
// notifications go to the log.
func NewServices(store *repositories.Store, blobs services.BlobStore, hasher *utils.PasswordHasher, logger logrus.FieldLogger) *Services {
	notifier := services.NewLogNotifier(logger)

	return &Services{
		Store:    store,
		Auth:     services.NewAuthService(store.Users, store.Admins, store.Revocations, hasher, logger),
		Accounts: services.NewAccountService(store, hasher, logger),
		Catalog:  services.NewCatalogService(store, notifier, logger),
		Carts:    services.NewCartService(store, notifier, logger),
		Checkout: services.NewCheckoutService(store, notifier, logger),
		Orders:   services.NewOrderService(store, notifier, logger),
		Wishlist: services.NewWishlistService(store, notifier, logger),
		Images:   services.NewImageService(blobs, logger),
		Cleanup:  services.NewImageCleanupService(blobs, store.DB(), logger),
	}
}
