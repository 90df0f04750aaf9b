package services

import (
	"context"
	"sync"
	"testing"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotifier records invalidations.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Changed(ctx context.Context, userID string, scopes ...string) {
	m.Called(userID, scopes)
}

func newCartFixture(t *testing.T) (*CartService, *repositories.Store, *models.Cart) {
	t.Helper()
	store := testutil.NewStore(t)
	logger, _ := testutil.NewLogger()
	user := testutil.SeedUser(t, store, "cart@example.com")

	cart := &models.Cart{UserID: user.ID}
	require.NoError(t, store.Carts.Create(context.Background(), cart))
	return NewCartService(store, nil, logger), store, cart
}

func reloadCart(t *testing.T, store *repositories.Store, id string) *models.Cart {
	t.Helper()
	cart, err := store.Carts.GetByID(context.Background(), id)
	require.NoError(t, err)
	cart.Items, err = store.Carts.ListItems(context.Background(), id)
	require.NoError(t, err)
	return cart
}

func assertTotalsMatchItems(t *testing.T, cart *models.Cart) {
	t.Helper()
	assert.True(t, cart.ItemsTotal().Equal(cart.TotalPrice),
		"cart total %s != items sum %s", cart.TotalPrice, cart.ItemsTotal())
	assert.Equal(t, cart.ItemsQuantity(), cart.ItemCount)
}

func TestCartService_AddOrIncrementItem(t *testing.T) {
	svc, store, cart := newCartFixture(t)
	ctx := context.Background()
	product := testutil.SeedProduct(t, store, "Mug", "20.00")

	item, err := svc.AddOrIncrementItem(ctx, cart.ID, product.ID, testutil.Money("20.00"))
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	for i := 0; i < 2; i++ {
		item, err = svc.AddOrIncrementItem(ctx, cart.ID, product.ID, testutil.Money("20.00"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, testutil.Money("60").Equal(item.TotalPrice))

	reloaded := reloadCart(t, store, cart.ID)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, testutil.Money("60").Equal(reloaded.TotalPrice))
	assertTotalsMatchItems(t, reloaded)
}

func TestCartService_AddOrIncrementItem_UnknownCart(t *testing.T) {
	svc, store, _ := newCartFixture(t)
	product := testutil.SeedProduct(t, store, "Mug", "20.00")

	_, err := svc.AddOrIncrementItem(context.Background(), "missing", product.ID, testutil.Money("20"))
	assert.ErrorIs(t, err, models.ErrCartNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCartService_TotalsStayConsistent(t *testing.T) {
	svc, store, cart := newCartFixture(t)
	ctx := context.Background()
	mug := testutil.SeedProduct(t, store, "Mug", "12.50")
	lamp := testutil.SeedProduct(t, store, "Lamp", "40.00")

	mugItem, err := svc.AddOrIncrementItem(ctx, cart.ID, mug.ID, mug.Price)
	require.NoError(t, err)
	lampItem, err := svc.AddOrIncrementItem(ctx, cart.ID, lamp.ID, lamp.Price)
	require.NoError(t, err)
	assertTotalsMatchItems(t, reloadCart(t, store, cart.ID))

	_, err = svc.ChangeQuantity(ctx, mugItem.ID, 4, mug.Price, 1)
	require.NoError(t, err)
	reloaded := reloadCart(t, store, cart.ID)
	assert.True(t, testutil.Money("90").Equal(reloaded.TotalPrice))
	assertTotalsMatchItems(t, reloaded)

	require.NoError(t, svc.RemoveItem(ctx, lampItem.ID, testutil.Money("40")))
	reloaded = reloadCart(t, store, cart.ID)
	assert.True(t, testutil.Money("50").Equal(reloaded.TotalPrice))
	assert.Equal(t, 4, reloaded.ItemCount)
	assertTotalsMatchItems(t, reloaded)
}

func TestCartService_ChangeQuantityRejectsBelowOne(t *testing.T) {
	// A nil store panics on any access, so a clean error proves nothing was touched.
	svc := NewCartService(nil, nil, nil)

	for _, qty := range []int{0, -1, -100} {
		_, err := svc.ChangeQuantity(context.Background(), "item", qty, testutil.Money("5"), 2)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	}
}

func TestCartService_ChangeQuantityUsesStoredLine(t *testing.T) {
	svc, store, cart := newCartFixture(t)
	ctx := context.Background()
	logger, hook := testutil.NewLogger()
	svc.logger = logger
	product := testutil.SeedProduct(t, store, "Mug", "10.00")

	item, err := svc.AddOrIncrementItem(ctx, cart.ID, product.ID, product.Price)
	require.NoError(t, err)

	// The caller believes the line holds 5 units; the stored row holds 1.
	_, err = svc.ChangeQuantity(ctx, item.ID, 2, product.Price, 5)
	require.NoError(t, err)

	reloaded := reloadCart(t, store, cart.ID)
	assert.True(t, testutil.Money("20").Equal(reloaded.TotalPrice))
	assertTotalsMatchItems(t, reloaded)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Stale quantity in change request", hook.LastEntry().Message)
}

func TestCartService_RemoveItemFloorsAtZero(t *testing.T) {
	svc, store, cart := newCartFixture(t)
	ctx := context.Background()
	product := testutil.SeedProduct(t, store, "Mug", "10.00")

	item, err := svc.AddOrIncrementItem(ctx, cart.ID, product.ID, product.Price)
	require.NoError(t, err)

	// Corrupt the stored cart total below the line total.
	current := reloadCart(t, store, cart.ID)
	require.NoError(t, store.Carts.UpdateTotals(ctx, cart.ID, current.Version, testutil.Money("4"), 1))

	require.NoError(t, svc.RemoveItem(ctx, item.ID, testutil.Money("10")))

	reloaded := reloadCart(t, store, cart.ID)
	assert.True(t, reloaded.TotalPrice.IsZero())
	assert.False(t, reloaded.TotalPrice.IsNegative())
	assert.Equal(t, 0, reloaded.ItemCount)
}

func TestCartService_RemoveItemNotFound(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	err := svc.RemoveItem(context.Background(), "missing", testutil.Money("1"))
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)
}

func TestCartService_ConcurrentAdds(t *testing.T) {
	svc, store, cart := newCartFixture(t)
	product := testutil.SeedProduct(t, store, "Mug", "3.00")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddOrIncrementItem(context.Background(), cart.ID, product.ID, product.Price)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrConflict)
	}

	reloaded := reloadCart(t, store, cart.ID)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, succeeded, reloaded.Items[0].Quantity)
	assertTotalsMatchItems(t, reloaded)
}

func TestCartService_AddToCart(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	notifier := &MockNotifier{}
	svc := NewCartService(store, notifier, nil)
	user := testutil.SeedUser(t, store, "shopper@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "20.00")

	notifier.On("Changed", user.ID, []string{ScopeCart}).Return()

	cart, err := svc.AddToCart(ctx, user.ID, product.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Mug", cart.Items[0].ProductName)

	again, err := svc.AddToCart(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID, "one active cart per user")
	assert.Equal(t, 2, again.Items[0].Quantity)
	assert.True(t, testutil.Money("40").Equal(again.TotalPrice))

	notifier.AssertNumberOfCalls(t, "Changed", 2)
}

func TestCartService_AddToCartOutOfStock(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewCartService(store, nil, nil)
	user := testutil.SeedUser(t, store, "shopper@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "20.00")

	product.Stock = 0
	require.NoError(t, store.Products.Update(ctx, product))

	_, err := svc.AddToCart(ctx, user.ID, product.ID)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.GetCart(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrCartNotFound, "a failed add leaves no cart behind")
}

func TestCartService_UserScopedMutations(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewCartService(store, nil, nil)
	owner := testutil.SeedUser(t, store, "owner@example.com")
	other := testutil.SeedUser(t, store, "other@example.com")
	product := testutil.SeedProduct(t, store, "Mug", "20.00")

	cart, err := svc.AddToCart(ctx, owner.ID, product.ID)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	_, err = svc.UpdateQuantity(ctx, other.ID, itemID, 5)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)
	_, err = svc.Remove(ctx, other.ID, itemID)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)

	cart, err = svc.UpdateQuantity(ctx, owner.ID, itemID, 3)
	require.NoError(t, err)
	assert.True(t, testutil.Money("60").Equal(cart.TotalPrice))
	assert.Equal(t, 3, cart.ItemCount)

	cart, err = svc.Remove(ctx, owner.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalPrice.IsZero())

	require.NoError(t, svc.ClearCart(ctx, owner.ID))
	_, err = svc.GetCart(ctx, owner.ID)
	assert.ErrorIs(t, err, models.ErrCartNotFound)
}
