package services

import (
	"context"
	"testing"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/testutil"
	"ecommerce-platform/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_UserCRUD(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewAccountService(store, utils.NewTestPasswordHasher(), nil)

	user, err := svc.CreateUser(ctx, &models.UserCreateRequest{
		Email: "Jane@Example.com", Username: "jane", Password: "long-enough-pw", FirstName: "Jane", LastName: "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	oldHash := user.PasswordHash

	updated, err := svc.UpdateUser(ctx, &models.UserUpdateRequest{
		ID: user.ID, Email: "jane@example.com", Username: "jane", FirstName: "Janet", LastName: "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, oldHash, updated.PasswordHash, "empty password keeps the hash")

	_, err = svc.CreateUser(ctx, &models.UserCreateRequest{
		Email: "jane@example.com", Username: "jane2", Password: "long-enough-pw", FirstName: "J", LastName: "D",
	})
	var dup *models.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	_, err = svc.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestAccountService_DeleteUserWithOrders(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewAccountService(store, utils.NewTestPasswordHasher(), nil)
	order := placeOrder(t, store, "buyer@example.com", "5.00", 1)

	err := svc.DeleteUser(context.Background(), order.UserID)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAccountService_LastSuperAdminIsKept(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewAccountService(store, utils.NewTestPasswordHasher(), nil)

	root, err := svc.CreateAdmin(ctx, &models.AdminCreateRequest{
		Username: "root", Email: "root@example.com", Password: "long-enough-pw", Role: models.AdminRoleSuperAdmin,
	})
	require.NoError(t, err)

	staff, err := svc.CreateAdmin(ctx, &models.AdminCreateRequest{
		Username: "staff", Email: "staff@example.com", Password: "long-enough-pw",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AdminRoleAdmin, staff.Role, "role defaults to Admin")

	_, err = svc.UpdateAdmin(ctx, &models.AdminUpdateRequest{
		ID: root.ID, Username: "root", Email: "root@example.com", Role: models.AdminRoleAdmin,
	})
	assert.ErrorIs(t, err, models.ErrForbidden)

	assert.ErrorIs(t, svc.DeleteAdmin(ctx, root.ID), models.ErrForbidden)

	_, err = svc.UpdateAdmin(ctx, &models.AdminUpdateRequest{
		ID: staff.ID, Username: "staff", Email: "staff@example.com", Role: models.AdminRoleSuperAdmin,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAdmin(ctx, root.ID))
	admins, err := svc.ListAdmins(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, staff.ID, admins[0].ID)
}
