package services

import (
	"context"
	"fmt"
	"strings"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CatalogService manages categories, products, reviews and addresses.
type CatalogService struct {
	store    *repositories.Store
	notifier ChangeNotifier
	logger   logrus.FieldLogger
}

func NewCatalogService(store *repositories.Store, notifier ChangeNotifier, logger logrus.FieldLogger) *CatalogService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CatalogService{store: store, notifier: notifierOrNop(notifier), logger: logger}
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	return s.store.Categories.List(ctx, limit, offset)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.store.Categories.GetByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *models.CategoryCreateRequest) (*models.Category, error) {
	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slugOrName(req.Slug, req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, req *models.CategoryUpdateRequest) (*models.Category, error) {
	category, err := s.store.Categories.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(req.Name)
	category.Slug = slugOrName(req.Slug, req.Name)
	category.Description = req.Description
	category.ImageURL = req.ImageURL
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if err := s.store.Categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category that no product references.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(tx *repositories.Store) error {
		products, err := tx.Products.List(ctx, models.ProductFilter{CategoryID: id, Limit: 1})
		if err != nil {
			return err
		}
		if len(products) > 0 {
			return fmt.Errorf("%w: category still has products", models.ErrInvalidInput)
		}
		return tx.Categories.Delete(ctx, id)
	})
}

// Products

func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	return s.store.Products.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.Products.GetByID(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, error) {
	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        slugOrName(req.Slug, req.Name),
		Description: req.Description,
		Price:       models.RoundMoney(req.Price),
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Categories.GetByID(ctx, product.CategoryID); err != nil {
			return err
		}
		return tx.Products.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct edits a catalog entry. Existing cart and order lines keep the
// totals they were created with.
func (s *CatalogService) UpdateProduct(ctx context.Context, req *models.ProductUpdateRequest) (*models.Product, error) {
	var product *models.Product
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		var err error
		product, err = tx.Products.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		product.CategoryID = req.CategoryID
		product.Name = strings.TrimSpace(req.Name)
		product.Slug = slugOrName(req.Slug, req.Name)
		product.Description = req.Description
		product.Price = models.RoundMoney(req.Price)
		product.Stock = req.Stock
		product.ImageURL = req.ImageURL
		if err := product.Validate(); err != nil {
			return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
		}
		if _, err := tx.Categories.GetByID(ctx, product.CategoryID); err != nil {
			return err
		}
		return tx.Products.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product and takes its lines out of every cart,
// keeping each cart's totals in step.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	var owners []string
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		items, err := tx.Carts.ItemsByProduct(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range items {
			cart, err := tx.Carts.GetByID(ctx, item.CartID)
			if err != nil {
				return err
			}
			if err := tx.Carts.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
			total := models.ClampNonNegative(cart.TotalPrice.Sub(item.TotalPrice))
			count := cart.ItemCount - item.Quantity
			if count < 0 {
				count = 0
			}
			if err := tx.Carts.UpdateTotals(ctx, cart.ID, cart.Version, total, count); err != nil {
				return err
			}
			if cart.UserID != "" {
				owners = append(owners, cart.UserID)
			}
		}
		return tx.Products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"product_id": id, "carts": len(owners)}).Info("Product deleted")
	for _, userID := range owners {
		s.notifier.Changed(ctx, userID, ScopeCart, ScopeWishlist)
	}
	return nil
}

func slugOrName(slug, name string) string {
	if slug = strings.TrimSpace(slug); slug != "" {
		return slug
	}
	return models.Slugify(name)
}

// Reviews

func (s *CatalogService) ListReviews(ctx context.Context, productID string, limit, offset int) ([]*models.Review, error) {
	return s.store.Reviews.List(ctx, productID, limit, offset)
}

func (s *CatalogService) GetReview(ctx context.Context, id string) (*models.Review, error) {
	return s.store.Reviews.GetByID(ctx, id)
}

// CreateReview records req.UserID's rating of a product.
func (s *CatalogService) CreateReview(ctx context.Context, req *models.ReviewCreateRequest) (*models.Review, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: review author is required", models.ErrInvalidInput)
	}
	review := &models.Review{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := review.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Products.GetByID(ctx, review.ProductID); err != nil {
			return err
		}
		return tx.Reviews.Create(ctx, review)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *CatalogService) UpdateReview(ctx context.Context, req *models.ReviewUpdateRequest) (*models.Review, error) {
	review, err := s.store.Reviews.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	review.Rating = req.Rating
	review.Comment = strings.TrimSpace(req.Comment)
	if err := review.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if err := s.store.Reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *CatalogService) DeleteReview(ctx context.Context, id string) error {
	return s.store.Reviews.Delete(ctx, id)
}

// Addresses

// ListAddresses lists one user's addresses, or every address when userID is
// empty.
func (s *CatalogService) ListAddresses(ctx context.Context, userID string, limit, offset int) ([]*models.Address, error) {
	return s.store.Addresses.List(ctx, userID, limit, offset)
}

// GetAddress returns an address. A non-empty userID restricts the lookup to
// that user's addresses.
func (s *CatalogService) GetAddress(ctx context.Context, id, userID string) (*models.Address, error) {
	address, err := s.store.Addresses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && address.UserID != userID {
		return nil, models.ErrAddressNotFound
	}
	return address, nil
}

// CreateAddress saves an address for req.UserID. A new default address
// replaces the previous default.
func (s *CatalogService) CreateAddress(ctx context.Context, req *models.AddressCreateRequest) (*models.Address, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: address owner is required", models.ErrInvalidInput)
	}
	address := &models.Address{
		UserID:     req.UserID,
		Line1:      strings.TrimSpace(req.Line1),
		Line2:      strings.TrimSpace(req.Line2),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
		IsDefault:  req.IsDefault,
	}

	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetByID(ctx, address.UserID); err != nil {
			return err
		}
		if address.IsDefault {
			if err := tx.Addresses.ClearDefault(ctx, address.UserID); err != nil {
				return err
			}
		}
		return tx.Addresses.Create(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// UpdateAddress edits an address. A non-empty userID restricts the edit to
// that user's addresses.
func (s *CatalogService) UpdateAddress(ctx context.Context, req *models.AddressUpdateRequest, userID string) (*models.Address, error) {
	var address *models.Address
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		var err error
		address, err = tx.Addresses.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if userID != "" && address.UserID != userID {
			return models.ErrAddressNotFound
		}
		if req.IsDefault && !address.IsDefault {
			if err := tx.Addresses.ClearDefault(ctx, address.UserID); err != nil {
				return err
			}
		}
		address.Line1 = strings.TrimSpace(req.Line1)
		address.Line2 = strings.TrimSpace(req.Line2)
		address.City = strings.TrimSpace(req.City)
		address.State = strings.TrimSpace(req.State)
		address.PostalCode = strings.TrimSpace(req.PostalCode)
		address.Country = strings.TrimSpace(req.Country)
		address.IsDefault = req.IsDefault
		return tx.Addresses.Update(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress removes an address. A non-empty userID restricts the delete
// to that user's addresses.
func (s *CatalogService) DeleteAddress(ctx context.Context, id, userID string) error {
	if _, err := s.GetAddress(ctx, id, userID); err != nil {
		return err
	}
	return s.store.Addresses.Delete(ctx, id)
}
