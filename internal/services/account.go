package services

import (
	"context"
	"fmt"
	"strings"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/utils"

	"github.com/sirupsen/logrus"
)

// AccountService manages user and admin accounts from the dashboard.
type AccountService struct {
	store  *repositories.Store
	hasher *utils.PasswordHasher
	logger logrus.FieldLogger
}

func NewAccountService(store *repositories.Store, hasher *utils.PasswordHasher, logger logrus.FieldLogger) *AccountService {
	if hasher == nil {
		hasher = utils.NewPasswordHasher()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AccountService{store: store, hasher: hasher, logger: logger}
}

func (s *AccountService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.store.Users.List(ctx, limit, offset)
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.Users.GetByID(ctx, id)
}

func (s *AccountService) CreateUser(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", user.ID).Info("User created")
	return user, nil
}

// UpdateUser writes the profile fields. An empty password keeps the old one.
func (s *AccountService) UpdateUser(ctx context.Context, req *models.UserUpdateRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	user, err := s.store.Users.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	user.Email = req.Email
	user.Username = strings.TrimSpace(req.Username)
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Phone = strings.TrimSpace(req.Phone)
	user.ImageURL = req.ImageURL
	if req.Password != "" {
		if user.PasswordHash, err = s.hasher.Hash(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user who has never placed an order.
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(tx *repositories.Store) error {
		orders, err := tx.Orders.List(ctx, repositories.OrderFilter{UserID: id, Limit: 1})
		if err != nil {
			return err
		}
		if len(orders) > 0 {
			return fmt.Errorf("%w: user has orders and cannot be deleted", models.ErrInvalidInput)
		}
		if cart, err := tx.Carts.GetByUserID(ctx, id); err == nil {
			if _, err := tx.Carts.DeleteItems(ctx, cart.ID); err != nil {
				return err
			}
			if err := tx.Carts.Delete(ctx, cart.ID); err != nil {
				return err
			}
		}
		if err := tx.Users.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.WithField("user_id", id).Info("User deleted")
		return nil
	})
}

func (s *AccountService) ListAdmins(ctx context.Context, limit, offset int) ([]*models.Admin, error) {
	return s.store.Admins.List(ctx, limit, offset)
}

func (s *AccountService) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	return s.store.Admins.GetByID(ctx, id)
}

func (s *AccountService) CreateAdmin(ctx context.Context, req *models.AdminCreateRequest) (*models.Admin, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.store.Admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"admin_id": admin.ID, "role": admin.Role}).Info("Admin created")
	return admin, nil
}

// UpdateAdmin writes the account fields. The last SuperAdmin cannot be
// demoted.
func (s *AccountService) UpdateAdmin(ctx context.Context, req *models.AdminUpdateRequest) (*models.Admin, error) {
	if !models.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: invalid admin role", models.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: username and email are required", models.ErrInvalidInput)
	}

	var admin *models.Admin
	err := s.store.InTx(ctx, func(tx *repositories.Store) error {
		var err error
		admin, err = tx.Admins.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if admin.IsSuperAdmin() && req.Role != models.AdminRoleSuperAdmin {
			if err := lastSuperAdminGuard(ctx, tx); err != nil {
				return err
			}
		}

		admin.Username = strings.TrimSpace(req.Username)
		admin.Email = normalizeEmail(req.Email)
		admin.Role = req.Role
		admin.ImageURL = req.ImageURL
		if req.Password != "" {
			if admin.PasswordHash, err = s.hasher.Hash(req.Password); err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
		}
		return tx.Admins.Update(ctx, admin)
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// DeleteAdmin removes an admin account other than the last SuperAdmin.
func (s *AccountService) DeleteAdmin(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(tx *repositories.Store) error {
		admin, err := tx.Admins.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if admin.IsSuperAdmin() {
			if err := lastSuperAdminGuard(ctx, tx); err != nil {
				return err
			}
		}
		if err := tx.Admins.Delete(ctx, admin.ID); err != nil {
			return err
		}
		s.logger.WithField("admin_id", admin.ID).Info("Admin deleted")
		return nil
	})
}

func lastSuperAdminGuard(ctx context.Context, tx *repositories.Store) error {
	n, err := tx.Admins.CountByRole(ctx, models.AdminRoleSuperAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("%w: at least one SuperAdmin must remain", models.ErrForbidden)
	}
	return nil
}
