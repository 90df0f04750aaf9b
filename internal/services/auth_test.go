package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "u-new"
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	args := m.Called(ctx, id)
	admin, _ := args.Get(0).(*models.Admin)
	return admin, args.Error(1)
}

func (m *MockAdminRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Admin, error) {
	args := m.Called(ctx, identifier)
	admin, _ := args.Get(0).(*models.Admin)
	return admin, args.Error(1)
}

type MockRevocationRepository struct {
	mock.Mock
}

func (m *MockRevocationRepository) Revoke(ctx context.Context, subjectID string, principal models.Principal, at time.Time) error {
	return m.Called(ctx, subjectID, principal, at).Error(0)
}

func newAuthFixture(t *testing.T) (*AuthService, *MockUserRepository, *MockAdminRepository, *MockRevocationRepository) {
	t.Helper()
	users := &MockUserRepository{}
	admins := &MockAdminRepository{}
	revocations := &MockRevocationRepository{}
	svc := NewAuthService(users, admins, revocations, utils.NewTestPasswordHasher(), nil)
	return svc, users, admins, revocations
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.NewTestPasswordHasher().Hash(password)
	require.NoError(t, err)
	return hash
}

func TestAuthService_Login(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	ctx := context.Background()
	user := &models.User{ID: "u-1", Email: "jane@example.com", PasswordHash: hashFor(t, "correct-horse")}

	users.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, models.ErrUserNotFound)

	got, err := svc.Login(ctx, "  Jane@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	_, err = svc.Login(ctx, "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost@example.com", "whatever-pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	users.AssertExpectations(t)
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	ctx := context.Background()
	storeErr := &models.PersistenceError{Op: "get user by email", Err: errors.New("db down")}
	users.On("GetByEmail", ctx, "jane@example.com").Return(nil, storeErr)

	_, err := svc.Login(ctx, "jane@example.com", "correct-horse")
	assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
	var persistErr *models.PersistenceError
	assert.True(t, errors.As(err, &persistErr))
}

func TestAuthService_AdminLogin(t *testing.T) {
	svc, _, admins, _ := newAuthFixture(t)
	ctx := context.Background()
	admin := &models.Admin{ID: "a-1", Username: "root", Role: models.AdminRoleSuperAdmin, PasswordHash: hashFor(t, "admin-secret")}

	admins.On("GetByIdentifier", ctx, "root").Return(admin, nil)
	admins.On("GetByIdentifier", ctx, "nobody").Return(nil, models.ErrAdminNotFound)

	got, err := svc.AdminLogin(ctx, " root ", "admin-secret")
	require.NoError(t, err)
	assert.True(t, got.IsSuperAdmin())

	_, err = svc.AdminLogin(ctx, "root", "nope-nope")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.AdminLogin(ctx, "nobody", "admin-secret")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_CorruptHashIsInvalidCredentials(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	ctx := context.Background()
	users.On("GetByEmail", ctx, "jane@example.com").
		Return(&models.User{ID: "u-1", PasswordHash: "$2a$10$bcrypt-leftover"}, nil)

	_, err := svc.Login(ctx, "jane@example.com", "anything-goes")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_Register(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "new@example.com" && u.Username == "newbie" && u.PasswordHash != "long-enough-pw"
	})).Return(nil).Once()

	user, err := svc.Register(ctx, &models.UserCreateRequest{
		Email:     " New@Example.com",
		Username:  "newbie",
		Password:  "long-enough-pw",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-new", user.ID)

	ok, err := utils.NewTestPasswordHasher().Verify("long-enough-pw", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	users.AssertExpectations(t)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.UserCreateRequest{Email: "bad", Username: "x", Password: "short"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	users.On("Create", ctx, mock.Anything).Return(&models.DuplicateError{Field: "email"}).Once()
	_, err = svc.Register(ctx, &models.UserCreateRequest{
		Email: "taken@example.com", Username: "taken", Password: "long-enough-pw", FirstName: "A", LastName: "B",
	})
	var dup *models.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Contains(t, err.Error(), "email")
}

func TestAuthService_LogoutEverywhere(t *testing.T) {
	svc, _, _, revocations := newAuthFixture(t)
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 5, 42_000_700, time.UTC) }

	revocations.On("Revoke", ctx, "u-1", models.PrincipalUser, time.Date(2025, 3, 1, 10, 0, 5, 42_000_000, time.UTC)).
		Return(nil).Once()

	require.NoError(t, svc.LogoutEverywhere(ctx, "u-1", models.PrincipalUser))
	assert.ErrorIs(t, svc.LogoutEverywhere(ctx, "", models.PrincipalUser), models.ErrUnauthorized)
	revocations.AssertExpectations(t)
}
