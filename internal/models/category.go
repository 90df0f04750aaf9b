package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Category groups products in the catalog
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"max=500"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=500"`
}

type CategoryUpdateRequest struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"max=500"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=500"`
}

var (
	// Slug validation regex: lowercase letters, numbers, and hyphens only
	slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Validate validates the category data
func (c *Category) Validate() error {
	if err := validateCategoryName(c.Name); err != nil {
		return err
	}

	if err := validateSlug(c.Slug); err != nil {
		return err
	}

	if len(c.Description) > 500 {
		return errors.New("category description must be less than 500 characters")
	}

	return nil
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("category name is required")
	}

	if len(name) > 100 {
		return errors.New("category name must be less than 100 characters")
	}

	return nil
}

// validateSlug is shared by categories and products.
func validateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}

	if len(slug) > 100 {
		return errors.New("slug must be less than 100 characters")
	}

	if !slugRegex.MatchString(slug) {
		return errors.New("slug can only contain lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return errors.New("slug cannot start or end with a hyphen")
	}

	if strings.Contains(slug, "--") {
		return errors.New("slug cannot contain consecutive hyphens")
	}

	return nil
}

// Slugify builds a slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
