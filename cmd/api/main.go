package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/jobs"
	"github.com/01moynul/storefront-golang/internal/logger"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notify"
	"github.com/01moynul/storefront-golang/internal/routes"
	"github.com/01moynul/storefront-golang/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 1. --- Logger ---
	flush, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer flush()
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. --- Database Connection ---
	db, err := database.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			zap.L().Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	store := database.NewStore(db)

	if err := bootstrapAdmin(ctx, store, cfg.Bootstrap); err != nil {
		zap.L().Fatal("Failed to bootstrap admin account", zap.Error(err))
	}

	// 3. --- Storage & Notifications ---
	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		zap.L().Fatal("Failed to initialise storage", zap.Error(err))
	}
	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		zap.L().Fatal("Failed to initialise notifier", zap.Error(err))
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		Store:    store,
		Storage:  files,
		Notifier: notifier,
		Tokens:   auth.NewTokenManager(cfg.JWTSecret),
		Options: handlers.Options{
			PlaceholderImageURL: cfg.PlaceholderImageURL,
			AdminEmail:          cfg.Notify.AdminEmail,
			NotifyTimeout:       cfg.Notify.Timeout,
			CookieSecure:        cfg.CookieSecure,
		},
	}

	// 4. --- Background Workers (Cron) ---
	var sweeper *jobs.OrphanSweeper
	if cfg.SweepSchedule != "" {
		sweeper, err = jobs.NewOrphanSweeper(store, cfg.SweepSchedule)
		if err != nil {
			zap.L().Fatal("Failed to schedule orphan sweeper", zap.Error(err))
		}
		sweeper.Start()
	}

	// --- Router Setup ---
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(app, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		zap.L().Info("Starting storefront API server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server shutdown failed", zap.Error(err))
	}
	if sweeper != nil {
		sweeper.Stop(shutdownCtx)
	}
}

// bootstrapAdmin makes sure the configured admin account exists.
func bootstrapAdmin(ctx context.Context, store *database.Store, cfg config.BootstrapConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var password models.Password
	if err := password.Set(cfg.AdminPassword); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	created, err := store.EnsureAdmin(ctx, &models.User{
		ID:           uuid.NewString(),
		FullName:     "Administrator",
		Email:        email,
		PasswordHash: password.Hash,
	})
	if err != nil {
		return err
	}
	if created {
		zap.L().Info("Created admin account", zap.String("email", email))
	}
	return nil
}
