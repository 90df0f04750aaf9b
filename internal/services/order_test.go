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

// placeOrder checks out a cart holding qty units of a product at price.
func placeOrder(t *testing.T, store *repositories.Store, email, price string, qty int) *models.Order {
	t.Helper()
	ctx := context.Background()
	user := testutil.SeedUser(t, store, email)
	product := testutil.SeedProduct(t, store, "Item "+email, price)

	cart := &models.Cart{UserID: user.ID}
	require.NoError(t, store.Carts.Create(ctx, cart))
	require.NoError(t, store.Carts.CreateItem(ctx, &models.CartItem{
		CartID:     cart.ID,
		ProductID:  product.ID,
		Quantity:   qty,
		TotalPrice: models.LineTotal(product.Price, qty),
	}))

	orderID, err := NewCheckoutService(store, nil, nil).Checkout(ctx, cart.ID)
	require.NoError(t, err)
	order, err := store.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	return order
}

func TestOrderService_UpdateStatus(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	order := placeOrder(t, store, "status@example.com", "10.00", 2)

	updated, err := svc.UpdateStatus(ctx, order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
	assert.True(t, order.TotalPrice.Equal(updated.TotalPrice), "status changes keep the total")

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderProcessing)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderDelivered)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "delivered is terminal")

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatus("Lost"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, "missing", models.OrderShipped)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestOrderService_CancelOrder(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	order := placeOrder(t, store, "cancel@example.com", "10.00", 1)

	_, err := svc.CancelOrder(ctx, order.ID, "someone-else")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	cancelled, err := svc.CancelOrder(ctx, order.ID, order.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	_, err = svc.CancelOrder(ctx, order.ID, order.UserID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOrderService_CancelShippedOrderRejected(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	order := placeOrder(t, store, "shipped@example.com", "10.00", 1)

	_, err := svc.UpdateStatus(ctx, order.ID, models.OrderShipped)
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, order.ID, order.UserID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOrderService_UpdateOrderItems(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	order := placeOrder(t, store, "items@example.com", "10.00", 3)
	require.Len(t, order.Items, 1)

	updated, err := svc.UpdateOrderItems(ctx, order.ID, []models.ItemQuantity{
		{OrderItemID: order.Items[0].ID, Quantity: 5},
	})
	require.NoError(t, err)
	assert.True(t, testutil.Money("50").Equal(updated.TotalPrice))

	reloaded, err := store.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Items[0].Quantity)
	assert.True(t, testutil.Money("50").Equal(reloaded.Items[0].TotalPrice))
	assert.True(t, reloaded.ItemsTotal().Equal(reloaded.TotalPrice))
}

func TestOrderService_UpdateOrderItemsRoundsDerivedPrice(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	order := placeOrder(t, store, "round@example.com", "3.33", 3)

	// 9.99 / 3 x 2 = 6.66
	updated, err := svc.UpdateOrderItems(ctx, order.ID, []models.ItemQuantity{
		{OrderItemID: order.Items[0].ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "6.66", updated.TotalPrice.StringFixed(2))
}

func TestOrderService_UpdateOrderItemsRoundsUnitPriceFirst(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	order := placeOrder(t, store, "unit@example.com", "10.00", 1)

	// A line of 3 units totalling 10.00 has a unit price of 3.33.
	require.NoError(t, store.Orders.UpdateItem(ctx, order.Items[0].ID, 3, testutil.Money("10.00")))

	updated, err := svc.UpdateOrderItems(ctx, order.ID, []models.ItemQuantity{
		{OrderItemID: order.Items[0].ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "6.66", updated.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "6.66", updated.TotalPrice.StringFixed(2))
}

func TestOrderService_UpdateOrderItemsRejects(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	order := placeOrder(t, store, "reject@example.com", "10.00", 1)
	itemID := order.Items[0].ID

	_, err := svc.UpdateOrderItems(ctx, order.ID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UpdateOrderItems(ctx, order.ID, []models.ItemQuantity{{OrderItemID: itemID, Quantity: 0}})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = svc.UpdateOrderItems(ctx, order.ID, []models.ItemQuantity{{OrderItemID: "missing", Quantity: 2}})
	assert.ErrorIs(t, err, models.ErrOrderItemNotFound)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderCancelled)
	require.NoError(t, err)
	_, err = svc.UpdateOrderItems(ctx, order.ID, []models.ItemQuantity{{OrderItemID: itemID, Quantity: 2}})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOrderService_ListAndDelete(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewOrderService(store, nil, nil)
	first := placeOrder(t, store, "a@example.com", "10.00", 1)
	placeOrder(t, store, "b@example.com", "10.00", 1)

	all, err := svc.ListOrders(ctx, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListOrders(ctx, repositories.OrderFilter{UserID: first.UserID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = svc.ListOrders(ctx, repositories.OrderFilter{Status: "Lost"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.GetUserOrder(ctx, first.ID, "someone-else")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	require.NoError(t, svc.DeleteOrder(ctx, first.ID))
	_, err = svc.GetOrder(ctx, first.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}
