package services

import (
	"context"
	"testing"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutService_PlacesOrderAndDeletesCart(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	notifier := &MockNotifier{}
	carts := NewCartService(store, nil, nil)
	checkout := NewCheckoutService(store, notifier, nil)

	user := testutil.SeedUser(t, store, "buyer@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "20.00")

	cart, err := carts.AddToCart(ctx, user.ID, product.ID)
	require.NoError(t, err)
	_, err = carts.UpdateQuantity(ctx, user.ID, cart.Items[0].ID, 3)
	require.NoError(t, err)

	notifier.On("Changed", user.ID, []string{ScopeCart, ScopeOrders}).Return().Once()

	orderID, err := checkout.Checkout(ctx, cart.ID)
	require.NoError(t, err)

	order, err := store.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, user.ID, order.UserID)
	assert.True(t, testutil.Money("60").Equal(order.TotalPrice))
	assert.True(t, models.ValidOrderNumber(order.OrderNumber))
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, testutil.Money("60").Equal(order.Items[0].TotalPrice))

	_, err = store.Carts.GetByID(ctx, cart.ID)
	assert.ErrorIs(t, err, models.ErrCartNotFound)
	items, err := store.Carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	notifier.AssertExpectations(t)
}

func TestCheckoutService_IsIdempotentPerCart(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	carts := NewCartService(store, nil, nil)
	checkout := NewCheckoutService(store, nil, nil)

	user := testutil.SeedUser(t, store, "buyer@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "20.00")
	cart, err := carts.AddToCart(ctx, user.ID, product.ID)
	require.NoError(t, err)

	first, err := checkout.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	second, err := checkout.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	orders, err := store.Orders.List(ctx, repositories.OrderFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutService_Preconditions(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	checkout := NewCheckoutService(store, nil, nil)
	user := testutil.SeedUser(t, store, "buyer@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "20.00")

	t.Run("empty cart", func(t *testing.T) {
		cart := &models.Cart{UserID: user.ID}
		require.NoError(t, store.Carts.Create(ctx, cart))

		_, err := checkout.Checkout(ctx, cart.ID)
		assert.ErrorIs(t, err, models.ErrEmptyCart)

		_, err = store.Carts.GetByID(ctx, cart.ID)
		assert.NoError(t, err, "failed checkout leaves the cart in place")
	})

	t.Run("cart without owner", func(t *testing.T) {
		cart := &models.Cart{}
		require.NoError(t, store.Carts.Create(ctx, cart))
		require.NoError(t, store.Carts.CreateItem(ctx, &models.CartItem{
			CartID: cart.ID, ProductID: product.ID, Quantity: 1, TotalPrice: testutil.Money("20"),
		}))

		_, err := checkout.Checkout(ctx, cart.ID)
		assert.ErrorIs(t, err, models.ErrMissingOwner)

		items, err := store.Carts.ListItems(ctx, cart.ID)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("unknown cart", func(t *testing.T) {
		_, err := checkout.Checkout(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrCartNotFound)
	})

	t.Run("user without cart", func(t *testing.T) {
		other := testutil.SeedUser(t, store, "nocart@example.com")
		_, err := checkout.PlaceOrder(ctx, other.ID)
		assert.ErrorIs(t, err, models.ErrEmptyCart)
	})
}

func TestCheckoutService_RecomputesDriftedTotal(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	logger, hook := testutil.NewLogger()
	checkout := NewCheckoutService(store, nil, logger)
	user := testutil.SeedUser(t, store, "buyer@example.com")
	mug := testutil.SeedProduct(t, store, "Mug", "20.00")
	lamp := testutil.SeedProduct(t, store, "Lamp", "7.25")

	cart := &models.Cart{UserID: user.ID}
	require.NoError(t, store.Carts.Create(ctx, cart))
	require.NoError(t, store.Carts.CreateItem(ctx, &models.CartItem{
		CartID: cart.ID, ProductID: mug.ID, Quantity: 2, TotalPrice: testutil.Money("40"),
	}))
	// A zero line total is re-priced from the catalog: 2 x 7.25.
	require.NoError(t, store.Carts.CreateItem(ctx, &models.CartItem{
		CartID: cart.ID, ProductID: lamp.ID, Quantity: 2, TotalPrice: testutil.Money("0"),
	}))
	require.NoError(t, store.Carts.UpdateTotals(ctx, cart.ID, 0, testutil.Money("99"), 4))

	orderID, err := checkout.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)

	order, err := store.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, testutil.Money("54.50").Equal(order.TotalPrice))
	assert.True(t, order.ItemsTotal().Equal(order.TotalPrice))

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Cart total drifted from its items, using the items sum" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCheckoutService_RetriesOrderNumberCollision(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	carts := NewCartService(store, nil, nil)
	checkout := NewCheckoutService(store, nil, nil)
	product := testutil.SeedProduct(t, store, "Teapot", "12.00")

	const taken = "ORD-20260101-000001"
	first := testutil.SeedUser(t, store, "first@example.com")
	_, err := carts.AddToCart(ctx, first.ID, product.ID)
	require.NoError(t, err)
	checkout.orderNumber = func() string { return taken }
	_, err = checkout.PlaceOrder(ctx, first.ID)
	require.NoError(t, err)

	numbers := []string{taken, "ORD-20260101-000002"}
	calls := 0
	checkout.orderNumber = func() string {
		n := numbers[calls]
		calls++
		return n
	}

	second := testutil.SeedUser(t, store, "second@example.com")
	_, err = carts.AddToCart(ctx, second.ID, product.ID)
	require.NoError(t, err)

	orderID, err := checkout.PlaceOrder(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	order, err := store.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260101-000002", order.OrderNumber)
	require.Len(t, order.Items, 1)

	_, err = store.Carts.GetByUserID(ctx, second.ID)
	assert.ErrorIs(t, err, models.ErrCartNotFound)
}

func TestCheckoutService_GivesUpOnPersistentOrderNumberCollision(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	carts := NewCartService(store, nil, nil)
	checkout := NewCheckoutService(store, nil, nil)
	product := testutil.SeedProduct(t, store, "Teapot", "12.00")

	const taken = "ORD-20260101-000001"
	checkout.orderNumber = func() string { return taken }

	first := testutil.SeedUser(t, store, "first@example.com")
	_, err := carts.AddToCart(ctx, first.ID, product.ID)
	require.NoError(t, err)
	_, err = checkout.PlaceOrder(ctx, first.ID)
	require.NoError(t, err)

	second := testutil.SeedUser(t, store, "second@example.com")
	cart, err := carts.AddToCart(ctx, second.ID, product.ID)
	require.NoError(t, err)

	_, err = checkout.PlaceOrder(ctx, second.ID)
	var dup *models.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "order_number", dup.Field)

	items, err := store.Carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1, "a failed checkout leaves the cart intact")
}
