package repositories_test

import (
	"context"
	"testing"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_CreateOrderNumber(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, store, "orders@example.com")

	generated := &models.Order{UserID: user.ID, TotalPrice: testutil.Money("5.00")}
	require.NoError(t, store.Orders.Create(ctx, generated))
	assert.True(t, models.ValidOrderNumber(generated.OrderNumber))

	supplied := &models.Order{UserID: user.ID, OrderNumber: "ORD-20260101-123456", TotalPrice: testutil.Money("5.00")}
	require.NoError(t, store.Orders.Create(ctx, supplied))

	duplicate := &models.Order{UserID: user.ID, OrderNumber: "ORD-20260101-123456", TotalPrice: testutil.Money("5.00")}
	var dup *models.DuplicateError
	require.ErrorAs(t, store.Orders.Create(ctx, duplicate), &dup)
	assert.Equal(t, "order_number", dup.Field)

	malformed := &models.Order{UserID: user.ID, OrderNumber: "INVALID-123"}
	assert.ErrorIs(t, store.Orders.Create(ctx, malformed), models.ErrInvalidInput)
}
