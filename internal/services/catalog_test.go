package services

import (
	"context"
	"testing"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CategoryAndProduct(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewCatalogService(store, nil, nil)

	category, err := svc.CreateCategory(ctx, &models.CategoryCreateRequest{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", category.Slug)

	_, err = svc.CreateProduct(ctx, &models.ProductCreateRequest{
		CategoryID: "missing", Name: "Spade", Price: testutil.Money("9.99"),
	})
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)

	_, err = svc.CreateProduct(ctx, &models.ProductCreateRequest{
		CategoryID: category.ID, Name: "Spade", Price: testutil.Money("-1"),
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	product, err := svc.CreateProduct(ctx, &models.ProductCreateRequest{
		CategoryID: category.ID, Name: "Garden Spade", Price: testutil.Money("9.999"), Stock: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "garden-spade", product.Slug)
	assert.Equal(t, "10.00", product.Price.StringFixed(2))

	updated, err := svc.UpdateProduct(ctx, &models.ProductUpdateRequest{
		ID: product.ID, CategoryID: category.ID, Name: "Garden Spade", Slug: "spade", Price: testutil.Money("12"), Stock: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "spade", updated.Slug)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), models.ErrInvalidInput)

	products, err := svc.ListProducts(ctx, models.ProductFilter{Search: "SPADE"})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCatalogService_DeleteProductUpdatesCarts(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	notifier := &MockNotifier{}
	svc := NewCatalogService(store, notifier, nil)
	carts := NewCartService(store, nil, nil)
	user := testutil.SeedUser(t, store, "shopper@example.com")
	mug := testutil.SeedProduct(t, store, "Mug", "5.00")
	lamp := testutil.SeedProduct(t, store, "Lamp", "30.00")

	_, err := carts.AddToCart(ctx, user.ID, mug.ID)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, user.ID, lamp.ID)
	require.NoError(t, err)

	notifier.On("Changed", user.ID, []string{ScopeCart, ScopeWishlist}).Return().Once()
	require.NoError(t, svc.DeleteProduct(ctx, lamp.ID))

	cart, err := carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, testutil.Money("5").Equal(cart.TotalPrice))
	assert.Equal(t, 1, cart.ItemCount)
	notifier.AssertExpectations(t)

	_, err = svc.GetProduct(ctx, lamp.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCatalogService_Addresses(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewCatalogService(store, nil, nil)
	user := testutil.SeedUser(t, store, "home@example.com")

	req := models.AddressCreateRequest{
		UserID: user.ID, Line1: "1 Main St", City: "Nairobi", PostalCode: "00100", Country: "KE", IsDefault: true,
	}
	first, err := svc.CreateAddress(ctx, &req)
	require.NoError(t, err)

	req.Line1 = "2 Side St"
	second, err := svc.CreateAddress(ctx, &req)
	require.NoError(t, err)

	reloaded, err := svc.GetAddress(ctx, first.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault, "a new default replaces the old one")

	_, err = svc.GetAddress(ctx, second.ID, "someone-else")
	assert.ErrorIs(t, err, models.ErrAddressNotFound)

	_, err = svc.UpdateAddress(ctx, &models.AddressUpdateRequest{
		ID: second.ID, Line1: "3 New St", City: "Nairobi", PostalCode: "00100", Country: "KE",
	}, "someone-else")
	assert.ErrorIs(t, err, models.ErrAddressNotFound)

	assert.ErrorIs(t, svc.DeleteAddress(ctx, second.ID, "someone-else"), models.ErrAddressNotFound)
	require.NoError(t, svc.DeleteAddress(ctx, second.ID, user.ID))

	addresses, err := svc.ListAddresses(ctx, user.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, addresses, 1)
}

func TestCatalogService_Reviews(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewCatalogService(store, nil, nil)
	user := testutil.SeedUser(t, store, "critic@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "5.00")

	_, err := svc.CreateReview(ctx, &models.ReviewCreateRequest{UserID: user.ID, ProductID: product.ID, Rating: 6})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	review, err := svc.CreateReview(ctx, &models.ReviewCreateRequest{
		UserID: user.ID, ProductID: product.ID, Rating: 4, Comment: " solid ",
	})
	require.NoError(t, err)
	assert.Equal(t, "solid", review.Comment)

	reviews, err := svc.ListReviews(ctx, product.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, user.Username, reviews[0].Author)

	updated, err := svc.UpdateReview(ctx, &models.ReviewUpdateRequest{ID: review.ID, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	require.NoError(t, svc.DeleteReview(ctx, review.ID))
	_, err = svc.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, models.ErrReviewNotFound)
}

func TestWishlistService_Toggle(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewWishlistService(store, nil, nil)
	user := testutil.SeedUser(t, store, "saver@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "5.00")

	added, err := svc.Toggle(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, added)

	items, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Mug", items[0].Product.Name)

	added, err = svc.Toggle(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = svc.Toggle(ctx, user.ID, "missing")
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	_, err = svc.Toggle(ctx, "", product.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
