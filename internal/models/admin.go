package models

import (
	"errors"
	"time"
)

// AdminRole gates destructive dashboard actions.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "Admin"
	AdminRoleSuperAdmin AdminRole = "SuperAdmin"
)

// Admin is a dashboard operator. Admins and Users are disjoint principals.
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         AdminRole `json:"role" db:"role"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type AdminCreateRequest struct {
	Username string    `json:"username" validate:"required,min=3,max=50"`
	Email    string    `json:"email" validate:"required,email,max=255"`
	Password string    `json:"password" validate:"required,min=8,max=128"`
	Role     AdminRole `json:"role" validate:"omitempty,oneof=Admin SuperAdmin"`
}

type AdminUpdateRequest struct {
	ID       string    `json:"id" validate:"required"`
	Username string    `json:"username" validate:"required,min=3,max=50"`
	Email    string    `json:"email" validate:"required,email,max=255"`
	Password string    `json:"password" validate:"omitempty,min=8,max=128"`
	Role     AdminRole `json:"role" validate:"required,oneof=Admin SuperAdmin"`
	ImageURL string    `json:"image_url" validate:"omitempty,max=500"`
}

// IsSuperAdmin reports whether the admin may manage other admin accounts.
func (a *Admin) IsSuperAdmin() bool {
	return a.Role == AdminRoleSuperAdmin
}

// ValidRole reports whether role is a known admin role.
func ValidRole(role AdminRole) bool {
	return role == AdminRoleAdmin || role == AdminRoleSuperAdmin
}

// Validate validates admin creation data and defaults an empty role.
func (req *AdminCreateRequest) Validate() error {
	if req.Username == "" {
		return errors.New("username is required")
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = AdminRoleAdmin
	}
	if !ValidRole(req.Role) {
		return errors.New("invalid admin role")
	}
	return nil
}
