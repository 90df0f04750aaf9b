package main

import (
	"context"
	"flag"
	"fmt"

	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/logging"
	"ecommerce-platform/internal/services"

	"github.com/sirupsen/logrus"
)

// Deletes stored images that no product, category, admin or user references.
func main() {
	dryRun := flag.Bool("dry-run", true, "Only report orphaned images")
	flag.Parse()

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
	blobs := services.NewStorageFactory(cfg, logger).CreateBlobStore(ctx)
	cleanup := services.NewImageCleanupService(blobs, db.DB, logger)

	result, err := cleanup.CleanupOrphanedImages(ctx, *dryRun)
	if err != nil {
		logger.WithError(err).Fatal("Image cleanup failed")
	}

	fmt.Println(result.GetSummary())
	for _, orphan := range result.OrphanedImages {
		fmt.Printf("  %s (%d bytes)\n", orphan.Key, orphan.Size)
	}
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}
