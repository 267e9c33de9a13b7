package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/irkinnovations/portfolio/internal/config"
	"github.com/irkinnovations/portfolio/internal/database"
	"github.com/irkinnovations/portfolio/internal/handler"
	"github.com/irkinnovations/portfolio/internal/mailer"
	"github.com/irkinnovations/portfolio/internal/repository"
	"github.com/irkinnovations/portfolio/internal/service"
	"github.com/irkinnovations/portfolio/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

type storeHandle interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	dbOpts := database.Options{
		ConnectTimeout: cfg.DBConnectTimeout,
		SocketTimeout:  cfg.DBSocketTimeout,
	}

	var (
		store    storeHandle
		projects service.ProjectStore
		admins   service.AdminStore
	)
	if cfg.UsesMongo() {
		db := database.NewMongo(cfg.DatabaseURL, cfg.DatabaseName, dbOpts)
		store = db
		projects = repository.NewMongoProjectRepository(db)
		admins = repository.NewMongoAdminRepository(db)
		slog.Info("using mongodb store", "database", cfg.DatabaseName)
	} else {
		db := database.NewPostgres(cfg.DatabaseURL, dbOpts)
		store = db
		projects = repository.NewProjectRepository(db)
		admins = repository.NewAdminRepository(db)
		slog.Info("using postgres store")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	issuer := service.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(admins, issuer)

	if cfg.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout+10*time.Second)
		_, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
		if err != nil {
			// The store may be down at boot; the handle retries on the next request.
			slog.Error("failed to ensure admin", "error", err)
		}
	}

	var assets service.AssetStore
	if cfg.Storage.Enabled() {
		bucket, err := storage.New(context.Background(), storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		assets = bucket
		slog.Info("image bucket configured", "bucket", bucket.Name())
	} else {
		slog.Warn("object storage not configured, image URLs are not checked against the bucket")
	}
	projectSvc := service.NewProjectService(projects, assets)

	var mail service.Mailer
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResend(cfg.ResendAPIKey)
	} else {
		slog.Warn("RESEND_API_KEY not set, contact form is disabled")
	}
	contactSvc := service.NewContactService(mail, cfg.ContactFrom, cfg.ContactTo)

	e := handler.NewRouter(handler.RouterConfig{
		Auth:           handler.NewAuthHandler(authSvc),
		Projects:       handler.NewProjectHandler(projectSvc),
		Contact:        handler.NewContactHandler(contactSvc),
		Health:         handler.NewHealthHandler(store),
		Verifier:       authSvc,
		LoginLimiter:   handler.NewRateLimiter(cfg.LoginRateLimit.Limit(), cfg.LoginRateLimit.Burst, 2*cfg.LoginRateLimit.Per),
		ContactLimiter: handler.NewRateLimiter(cfg.ContactRateLimit.Limit(), cfg.ContactRateLimit.Burst, 2*cfg.ContactRateLimit.Per),
		AllowOrigins:   []string{cfg.FrontendURL},
		TrustedProxies: cfg.TrustedProxies,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
