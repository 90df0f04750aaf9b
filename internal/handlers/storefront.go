package handlers

import (
	"errors"
	"net/http"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"
)

// StorefrontHandler serves the customer-facing procedures.
type StorefrontHandler struct {
	rpc      *RPC
	catalog  *services.CatalogService
	carts    *services.CartService
	checkout *services.CheckoutService
	orders   *services.OrderService
	wishlist *services.WishlistService
}

func NewStorefrontHandler(
	rpc *RPC,
	catalog *services.CatalogService,
	carts *services.CartService,
	checkout *services.CheckoutService,
	orders *services.OrderService,
	wishlist *services.WishlistService,
) *StorefrontHandler {
	return &StorefrontHandler{
		rpc:      rpc,
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		wishlist: wishlist,
	}
}

// Catalog

func (h *StorefrontHandler) GetProducts(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.ProductFilter
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListProducts(r.Context(), req)
}

func (h *StorefrontHandler) FindProductByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.GetProduct(r.Context(), req.ID)
}

func (h *StorefrontHandler) GetCategories(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req pageRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListCategories(r.Context(), req.Limit, req.Offset)
}

func (h *StorefrontHandler) FindCategoryByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.GetCategory(r.Context(), req.ID)
}

type reviewsRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	pageRequest
}

func (h *StorefrontHandler) GetReviews(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req reviewsRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListReviews(r.Context(), req.ProductID, req.Limit, req.Offset)
}

func (h *StorefrontHandler) CreateReview(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req models.ReviewCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	req.UserID = userID
	return h.catalog.CreateReview(r.Context(), &req)
}

// Addresses are always scoped to the session's user.

func (h *StorefrontHandler) GetAddresses(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req pageRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListAddresses(r.Context(), userID, req.Limit, req.Offset)
}

func (h *StorefrontHandler) CreateAddress(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req models.AddressCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	req.UserID = userID
	return h.catalog.CreateAddress(r.Context(), &req)
}

func (h *StorefrontHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req models.AddressUpdateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.UpdateAddress(r.Context(), &req, userID)
}

func (h *StorefrontHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return nil, h.catalog.DeleteAddress(r.Context(), req.ID, userID)
}

// Cart

// GetCart returns the user's cart. A user without one gets an empty cart.
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	cart, err := h.carts.GetCart(r.Context(), userID)
	if errors.Is(err, models.ErrCartNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return cart, err
}

func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req models.AddToCartRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.carts.AddToCart(r.Context(), userID, req.ProductID)
}

func (h *StorefrontHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req models.ChangeQuantityRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.carts.UpdateQuantity(r.Context(), userID, req.CartItemID, req.NewQuantity)
}

func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req models.RemoveItemRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.carts.Remove(r.Context(), userID, req.CartItemID)
}

func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	err = h.carts.ClearCart(r.Context(), userID)
	if errors.Is(err, models.ErrCartNotFound) {
		return nil, nil
	}
	return nil, err
}

type placeOrderResponse struct {
	OrderID string `json:"order_id"`
}

func (h *StorefrontHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	orderID, err := h.checkout.PlaceOrder(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return placeOrderResponse{OrderID: orderID}, nil
}

// Orders

type ordersRequest struct {
	Status models.OrderStatus `json:"status" validate:"omitempty,oneof=Pending Processing Shipped Delivered Cancelled"`
	pageRequest
}

func (h *StorefrontHandler) GetOrders(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req ordersRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.orders.ListOrders(r.Context(), repositories.OrderFilter{
		UserID: userID,
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

func (h *StorefrontHandler) FindOrderByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.orders.GetUserOrder(r.Context(), req.ID, userID)
}

func (h *StorefrontHandler) CancelOrder(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.orders.CancelOrder(r.Context(), req.ID, userID)
}

// Wishlist

func (h *StorefrontHandler) GetWishlist(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	return h.wishlist.List(r.Context(), userID)
}

type toggleWishlistResponse struct {
	Added bool `json:"added"`
}

func (h *StorefrontHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	userID, err := subject(r)
	if err != nil {
		return nil, err
	}
	var req models.WishlistToggleRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	added, err := h.wishlist.Toggle(r.Context(), userID, req.ProductID)
	if err != nil {
		return nil, err
	}
	return toggleWishlistResponse{Added: added}, nil
}
