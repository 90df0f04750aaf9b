package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/utils"

	"github.com/sirupsen/logrus"
)

// UserRepository is the slice of user persistence the auth flow needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AdminRepository is the slice of admin persistence the auth flow needs.
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Admin, error)
}

// RevocationRepository records "log out everywhere" cut-offs.
type RevocationRepository interface {
	Revoke(ctx context.Context, subjectID string, principal models.Principal, at time.Time) error
}

// AuthService verifies credentials for both principals. Session tokens are
// issued by auth.SessionManager once a login here succeeds.
type AuthService struct {
	users       UserRepository
	admins      AdminRepository
	revocations RevocationRepository
	hasher      *utils.PasswordHasher
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(users UserRepository, admins AdminRepository, revocations RevocationRepository, hasher *utils.PasswordHasher, logger logrus.FieldLogger) *AuthService {
	if hasher == nil {
		hasher = utils.NewPasswordHasher()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		users:       users,
		admins:      admins,
		revocations: revocations,
		hasher:      hasher,
		logger:      logger,
		now:         time.Now,
	}
}

// Login authenticates a storefront user by email.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.WithField("email", email).Info("Login for unknown user")
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.verify(password, user.PasswordHash); err != nil {
		s.logger.WithField("email", email).Info("Login with wrong password")
		return nil, err
	}
	return user, nil
}

// AdminLogin authenticates an admin by username or email.
func (s *AuthService) AdminLogin(ctx context.Context, identifier, password string) (*models.Admin, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	admin, err := s.admins.GetByIdentifier(ctx, identifier)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.WithField("identifier", identifier).Info("Admin login for unknown admin")
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.verify(password, admin.PasswordHash); err != nil {
		s.logger.WithField("identifier", identifier).Info("Admin login with wrong password")
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) verify(password, hash string) error {
	ok, err := s.hasher.Verify(password, hash)
	if errors.Is(err, utils.ErrInvalidHash) {
		return models.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return models.ErrInvalidCredentials
	}
	return nil
}

// Register creates a storefront account. A taken email or username surfaces
// as *models.DuplicateError naming the field.
func (s *AuthService) Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
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
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// CurrentUser resolves the subject of a storefront session.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}
	return s.users.GetByID(ctx, userID)
}

// CurrentAdmin resolves the subject of a dashboard session.
func (s *AuthService) CurrentAdmin(ctx context.Context, adminID string) (*models.Admin, error) {
	if adminID == "" {
		return nil, models.ErrUnauthorized
	}
	return s.admins.GetByID(ctx, adminID)
}

// LogoutEverywhere invalidates every session of the subject issued up to now.
func (s *AuthService) LogoutEverywhere(ctx context.Context, subjectID string, principal models.Principal) error {
	if subjectID == "" {
		return models.ErrUnauthorized
	}
	if err := s.revocations.Revoke(ctx, subjectID, principal, auth.RevocationCutoff(s.now())); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"subject_id": subjectID,
		"principal":  principal,
	}).Info("All sessions revoked")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
