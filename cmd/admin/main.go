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
		logrus.WithError(err).Fatal("Failed to start admin dashboard")
	}
	defer app.Close()

	sessions := auth.NewAdminSessionManager(app.Codec, app.Config, app.Logger)
	router := server.NewAdminRouter(app.Services, app.Options(sessions, server.AdminCSRFExempt))

	addr := net.JoinHostPort(app.Config.Server.Host, app.Config.Server.AdminPort)
	if err := server.Run(addr, router, app.Logger.WithField("app", "admin")); err != nil {
		app.Logger.WithError(err).Error("Admin dashboard stopped with error")
	}
}
