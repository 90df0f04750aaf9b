package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/logging"
	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"
	"ecommerce-platform/internal/utils"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

// App is the state both binaries build at startup.
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *database.DB
	Codec    *auth.Codec
	Services *Services
}

// Bootstrap loads configuration, opens the database and blob store and builds
// the services. A configuration error is returned before anything is opened.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg)

	codec, err := auth.NewCodec(cfg.Session.Secret, logger)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.WithField("driver", db.Driver).Info("Database connection established")

	blobs := services.NewStorageFactory(cfg, logger).CreateBlobStore(ctx)
	store := repositories.NewStore(db.DB)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Codec:    codec,
		Services: NewServices(store, blobs, utils.NewPasswordHasher(), logger),
	}, nil
}

// Options builds the HTTP options for an application served with sessions.
func (a *App) Options(sessions *auth.SessionManager, csrfExempt []string) Options {
	sessions.WithRevocations(a.Services.Store.Revocations)

	// Validate has already rejected malformed entries.
	trusted, _ := a.Config.Server.TrustedProxyNets()

	csrfStore := middleware.NewCSRFStore(a.Config.Session.Secret, a.Config.Server.SecureCookies)

	return Options{
		Sessions:       sessions,
		CSRF:           middleware.NewCSRFMiddleware(csrfStore, a.Logger, csrfExempt...),
		CORS:           middleware.DefaultCORSConfig(a.Config.Server.AllowedOrigin),
		LoginLimiter:   middleware.DefaultLoginRateLimiter(),
		TrustedProxies: trusted,
		UploadsDir:     a.Config.Uploads.Dir,
		Logger:         a.Logger,
	}
}

func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		a.Logger.WithError(err).Error("Error closing database connection")
		return
	}
	a.Logger.Info("Database connection closed")
}

// Run serves handler on addr until SIGINT or SIGTERM, then drains in-flight
// requests.
func Run(addr string, handler http.Handler, logger logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Warn("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
