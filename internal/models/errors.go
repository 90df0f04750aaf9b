package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrAdminNotFound      = fmt.Errorf("admin %w", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)
	ErrCartNotFound       = fmt.Errorf("cart %w", ErrNotFound)
	ErrCartItemNotFound   = fmt.Errorf("cart item %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrOrderItemNotFound  = fmt.Errorf("order item %w", ErrNotFound)
	ErrAddressNotFound    = fmt.Errorf("address %w", ErrNotFound)
	ErrReviewNotFound     = fmt.Errorf("review %w", ErrNotFound)
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCart          = errors.New("cart has no items")
	ErrMissingOwner       = errors.New("cart has no owner")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrConflict           = errors.New("concurrent modification, try again")
)

// DuplicateError is returned when a uniqueness constraint is violated. The
// message always names the field so callers can build a friendlier message.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// PersistenceError wraps a failure of the underlying data store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// BlobStoreError wraps a failure of the object store.
type BlobStoreError struct {
	Op  string
	Key string
	Err error
}

func (e *BlobStoreError) Error() string {
	return fmt.Sprintf("blob store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *BlobStoreError) Unwrap() error {
	return e.Err
}
