package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/logging"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"
	"ecommerce-platform/internal/utils"

	"github.com/sirupsen/logrus"
)

// Seeds the first SuperAdmin. Re-running with an existing username resets
// that account's password instead.
func main() {
	var (
		username = flag.String("username", "admin", "Admin username")
		email    = flag.String("email", "admin@example.com", "Admin email")
		password = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (defaults to $ADMIN_PASSWORD)")
	)
	flag.Parse()

	if *password == "" {
		fmt.Println("Usage: go run ./cmd/create-admin -username admin -email admin@example.com -password <secret>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := logging.New(cfg)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	store := repositories.NewStore(db.DB)
	accounts := services.NewAccountService(store, utils.NewPasswordHasher(), logger)

	existing, err := store.Admins.GetByIdentifier(ctx, *username)
	switch {
	case err == nil:
		_, err = accounts.UpdateAdmin(ctx, &models.AdminUpdateRequest{
			ID:       existing.ID,
			Username: existing.Username,
			Email:    existing.Email,
			Password: *password,
			Role:     models.AdminRoleSuperAdmin,
			ImageURL: existing.ImageURL,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to update admin")
		}
		fmt.Printf("Admin %s already existed; password reset and role set to SuperAdmin\n", existing.Username)
	case errors.Is(err, models.ErrNotFound):
		admin, err := accounts.CreateAdmin(ctx, &models.AdminCreateRequest{
			Username: *username,
			Email:    *email,
			Password: *password,
			Role:     models.AdminRoleSuperAdmin,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to create admin")
		}
		fmt.Printf("SuperAdmin created: %s (%s)\n", admin.Username, admin.ID)
	default:
		logger.WithError(err).Fatal("Failed to look up admin")
	}
}
