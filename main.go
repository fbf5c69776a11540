package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/invoice-ledger/auth"
	"github.com/yourusername/invoice-ledger/config"
	"github.com/yourusername/invoice-ledger/handlers"
	"github.com/yourusername/invoice-ledger/logger"
	"github.com/yourusername/invoice-ledger/models"
	"github.com/yourusername/invoice-ledger/services"
	"github.com/yourusername/invoice-ledger/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		appLog.Fatalf("Failed to connect to database: %v", err)
	}

	users := auth.NewDBUserStore(db)
	if cfg.AdminPassword != "" {
		if _, err := users.EnsureUser(context.Background(), cfg.AdminUsername, cfg.AdminPassword, models.RoleAdmin); err != nil {
			appLog.Fatalf("Failed to seed admin user: %v", err)
		}
	} else {
		appLog.Warnw("ADMIN_PASSWORD not set, no admin user seeded", "username", cfg.AdminUsername)
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.RouterDeps{
		Config:   cfg,
		Logger:   appLog,
		Users:    users,
		Invoices: services.NewInvoiceService(db, utils.NewPDFExtractor(), appLog),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Infow("starting invoice ledger API", "port", cfg.Port, "driver", cfg.DatabaseDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Errorw("server forced to shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	appLog.Info("server stopped")
}
