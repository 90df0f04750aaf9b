package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// User is a storefront customer account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Phone        string    `json:"phone" db:"phone"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserCreateRequest is the signup / admin create payload.
type UserCreateRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
}

// UserUpdateRequest carries the editable profile fields. An empty Password
// leaves the stored hash untouched.
type UserUpdateRequest struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"omitempty,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	ImageURL  string `json:"image_url" validate:"omitempty,max=500"`
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRegex  = regexp.MustCompile(`^[\p{L}\s\-']+$`)
)

// Validate validates the user data
func (u *User) Validate() error {
	if err := validateEmail(u.Email); err != nil {
		return err
	}

	if err := validateName(u.FirstName, u.LastName); err != nil {
		return err
	}

	return nil
}

// FullName returns "First Last", trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate validates user creation data
func (req *UserCreateRequest) Validate() error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if err := validatePassword(req.Password); err != nil {
		return err
	}

	return validateName(req.FirstName, req.LastName)
}

// Validate validates user update data
func (req *UserUpdateRequest) Validate() error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if req.Password != "" {
		if err := validatePassword(req.Password); err != nil {
			return err
		}
	}

	return validateName(req.FirstName, req.LastName)
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if len(email) > 255 {
		return errors.New("email must be less than 255 characters")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}

	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	if len(password) > 128 {
		return errors.New("password must be less than 128 characters")
	}

	return nil
}

func validateName(firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" {
		return errors.New("first name is required")
	}

	if strings.TrimSpace(lastName) == "" {
		return errors.New("last name is required")
	}

	if len(firstName) > 100 || len(lastName) > 100 {
		return errors.New("names must be less than 100 characters")
	}

	if !nameRegex.MatchString(firstName) {
		return errors.New("first name contains invalid characters")
	}

	if !nameRegex.MatchString(lastName) {
		return errors.New("last name contains invalid characters")
	}

	return nil
}
