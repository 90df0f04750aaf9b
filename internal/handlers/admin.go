package handlers

import (
	"net/http"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"

	"github.com/sirupsen/logrus"
)

// AdminHandler serves the dashboard's management procedures.
type AdminHandler struct {
	rpc      *RPC
	accounts *services.AccountService
	catalog  *services.CatalogService
	orders   *services.OrderService
	cleanup  *services.ImageCleanupService
	logger   logrus.FieldLogger
}

// NewAdminHandler creates the handler. cleanup may be nil, in which case
// images of deleted entities are left for the cleanup command.
func NewAdminHandler(
	rpc *RPC,
	accounts *services.AccountService,
	catalog *services.CatalogService,
	orders *services.OrderService,
	cleanup *services.ImageCleanupService,
	logger logrus.FieldLogger,
) *AdminHandler {
	return &AdminHandler{
		rpc:      rpc,
		accounts: accounts,
		catalog:  catalog,
		orders:   orders,
		cleanup:  cleanup,
		logger:   logger,
	}
}

// removeImages deletes the blobs of a deleted entity. Failures only log: the
// orphans are caught by the next cleanup run.
func (h *AdminHandler) removeImages(r *http.Request, kind services.ImageKind, id string) {
	if h.cleanup == nil {
		return
	}
	if err := h.cleanup.CleanupEntityImages(r.Context(), kind, id); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"kind": kind,
			"id":   id,
		}).Warn("Failed to delete entity images")
	}
}

// Users

func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req pageRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.ListUsers(r.Context(), req.Limit, req.Offset)
}

func (h *AdminHandler) FindUserByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.GetUser(r.Context(), req.ID)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.UserCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.CreateUser(r.Context(), &req)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.UserUpdateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.UpdateUser(r.Context(), &req)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	if err := h.accounts.DeleteUser(r.Context(), req.ID); err != nil {
		return nil, err
	}
	h.removeImages(r, services.ImageKindUser, req.ID)
	return nil, nil
}

// Admins. Create, update and delete are mounted behind the SuperAdmin check.

func (h *AdminHandler) GetAdmins(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req pageRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.ListAdmins(r.Context(), req.Limit, req.Offset)
}

func (h *AdminHandler) FindAdminByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.GetAdmin(r.Context(), req.ID)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.AdminCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.CreateAdmin(r.Context(), &req)
}

func (h *AdminHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.AdminUpdateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.accounts.UpdateAdmin(r.Context(), &req)
}

func (h *AdminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	if err := h.accounts.DeleteAdmin(r.Context(), req.ID); err != nil {
		return nil, err
	}
	h.removeImages(r, services.ImageKindAdmin, req.ID)
	return nil, nil
}

// Categories

func (h *AdminHandler) GetCategories(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req pageRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListCategories(r.Context(), req.Limit, req.Offset)
}

func (h *AdminHandler) FindCategoryByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.GetCategory(r.Context(), req.ID)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.CategoryCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.CreateCategory(r.Context(), &req)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.CategoryUpdateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.UpdateCategory(r.Context(), &req)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	if err := h.catalog.DeleteCategory(r.Context(), req.ID); err != nil {
		return nil, err
	}
	h.removeImages(r, services.ImageKindCategory, req.ID)
	return nil, nil
}

// Products

func (h *AdminHandler) GetProducts(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.ProductFilter
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListProducts(r.Context(), req)
}

func (h *AdminHandler) FindProductByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.GetProduct(r.Context(), req.ID)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.ProductCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.CreateProduct(r.Context(), &req)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.ProductUpdateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.UpdateProduct(r.Context(), &req)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	if err := h.catalog.DeleteProduct(r.Context(), req.ID); err != nil {
		return nil, err
	}
	h.removeImages(r, services.ImageKindProduct, req.ID)
	return nil, nil
}

// Addresses. The dashboard sees every user's addresses.

type addressesRequest struct {
	UserID string `json:"user_id"`
	pageRequest
}

func (h *AdminHandler) GetAddresses(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req addressesRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListAddresses(r.Context(), req.UserID, req.Limit, req.Offset)
}

func (h *AdminHandler) FindAddressByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.GetAddress(r.Context(), req.ID, "")
}

func (h *AdminHandler) CreateAddress(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.AddressCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.CreateAddress(r.Context(), &req)
}

func (h *AdminHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.AddressUpdateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.UpdateAddress(r.Context(), &req, "")
}

func (h *AdminHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return nil, h.catalog.DeleteAddress(r.Context(), req.ID, "")
}

// Reviews

type adminReviewsRequest struct {
	ProductID string `json:"product_id"`
	pageRequest
}

func (h *AdminHandler) GetReviews(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req adminReviewsRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.ListReviews(r.Context(), req.ProductID, req.Limit, req.Offset)
}

func (h *AdminHandler) FindReviewByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.GetReview(r.Context(), req.ID)
}

func (h *AdminHandler) CreateReview(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.ReviewCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.CreateReview(r.Context(), &req)
}

func (h *AdminHandler) UpdateReview(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.ReviewUpdateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.catalog.UpdateReview(r.Context(), &req)
}

func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return nil, h.catalog.DeleteReview(r.Context(), req.ID)
}

// Orders

type adminOrdersRequest struct {
	UserID string `json:"user_id"`
	ordersRequest
}

func (h *AdminHandler) GetOrders(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req adminOrdersRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.orders.ListOrders(r.Context(), repositories.OrderFilter{
		UserID: req.UserID,
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

func (h *AdminHandler) FindOrderByID(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.orders.GetOrder(r.Context(), req.ID)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.UpdateOrderStatusRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.orders.UpdateStatus(r.Context(), req.ID, req.Status)
}

func (h *AdminHandler) UpdateOrderItems(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.UpdateOrderItemsRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.orders.UpdateOrderItems(r.Context(), req.ID, req.Items)
}

func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req idRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return nil, h.orders.DeleteOrder(r.Context(), req.ID)
}
