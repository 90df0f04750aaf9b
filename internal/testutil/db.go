// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// NewDB opens a migrated SQLite database in a temp dir.
func NewDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := test.NewNullLogger()
	require.NoError(t, database.NewMigrator(db.DB, logger).RunMigrations(context.Background()))
	return db
}

// NewStore returns a Store over a fresh database.
func NewStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.NewStore(NewDB(t).DB)
}

// NewLogger returns a logger that records entries for assertions.
func NewLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// Money parses a decimal literal.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SeedUser inserts a user with the given email.
func SeedUser(t *testing.T, store *repositories.Store, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: "unused",
		FirstName:    "Test",
		LastName:     "User",
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

// SeedProduct inserts a product (and a category for it) at price.
func SeedProduct(t *testing.T, store *repositories.Store, name, price string) *models.Product {
	t.Helper()
	ctx := context.Background()

	slug := models.Slugify(name)
	category := &models.Category{Name: name + " category", Slug: slug + "-category"}
	require.NoError(t, store.Categories.Create(ctx, category))

	product := &models.Product{
		CategoryID: category.ID,
		Name:       name,
		Slug:       slug,
		Price:      Money(price),
		Stock:      100,
	}
	require.NoError(t, store.Products.Create(ctx, product))
	return product
}
