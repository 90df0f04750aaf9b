package main

import (
	"context"
	"net"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/server"

	"github.com/sirupsen/logrus"
)

func main() {
	app, err := server.Bootstrap(context.Background())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start storefront")
	}
	defer app.Close()

	sessions := auth.NewUserSessionManager(app.Codec, app.Config, app.Logger)
	router := server.NewStorefrontRouter(app.Services, app.Options(sessions, server.StorefrontCSRFExempt))

	addr := net.JoinHostPort(app.Config.Server.Host, app.Config.Server.Port)
	if err := server.Run(addr, router, app.Logger.WithField("app", "storefront")); err != nil {
		app.Logger.WithError(err).Error("Storefront stopped with error")
	}
}
