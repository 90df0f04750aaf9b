package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/logging"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		statusFlag = flag.Bool("status", false, "Show migration status")
		upFlag     = flag.Bool("up", false, "Run pending migrations")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	logger := logging.New(cfg)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	migrator := database.NewMigrator(db.DB, logger)

	switch {
	case *statusFlag:
		status, err := migrator.Status(ctx)
		if err != nil {
			logger.WithError(err).Fatal("Failed to get migration status")
		}
		for _, s := range status {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
		}
	case *upFlag:
		if err := migrator.RunMigrations(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		fmt.Println("All migrations completed successfully!")
	default:
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/migrate -status   # Show migration status")
		fmt.Println("  go run ./cmd/migrate -up       # Run pending migrations")
		os.Exit(1)
	}
}
