package main

import (
	"context"
	"fmt"
	"os"

	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/logging"
	"ecommerce-platform/internal/services"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := logging.New(cfg)

	factory := services.NewStorageFactory(cfg, logger)

	if err := factory.ValidateR2Configuration(); err != nil {
		logger.WithError(err).Fatal("R2 configuration validation failed")
	}

	fmt.Println("R2 configuration is valid")
	fmt.Printf("Storage Information:\n")
	fmt.Printf("  Bucket Name: %s\n", cfg.R2.BucketName)
	fmt.Printf("  Public URL: %s\n", cfg.R2.PublicURL)
	fmt.Printf("  Fallback Path: %s\n", cfg.Uploads.Dir)

	if len(os.Args) > 1 && os.Args[1] == "setup" {
		fmt.Println("\nSetting up R2 bucket...")

		if err := factory.SetupR2Bucket(context.Background()); err != nil {
			logger.WithError(err).Fatal("Failed to set up R2 bucket")
		}

		fmt.Println("R2 bucket setup completed successfully!")
	} else {
		fmt.Println("\nTo set up the R2 bucket, run: go run ./cmd/setup-r2 setup")
	}
}
