package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"

	"little-lemon-go/config"
	"little-lemon-go/database"
	"little-lemon-go/handlers"
	"little-lemon-go/logger"
	"little-lemon-go/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New("little-lemon-api")

	/* DATABASE SETUP STARTS */

	gormLevel := gormlogger.Warn
	if cfg.Env == "debug" {
		gormLevel = gormlogger.Info
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURI, gormLevel)
	if err != nil {
		appLog.Error("db_connect_failed", "", "failed to connect to database", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLog.Error("db_close_failed", "", "failed to close database", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		appLog.Error("db_migrate_failed", "", "failed to migrate database", err)
		os.Exit(1)
	}
	if err := database.SeedRoleGroups(context.Background(), db); err != nil {
		appLog.Error("db_seed_failed", "", "failed to seed role groups", err)
		os.Exit(1)
	}
	/* DATABASE SETUP ENDS */

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		appLog.Error("token_manager_failed", "", "invalid token configuration", err)
		os.Exit(1)
	}

	if cfg.Development() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.SetupRouter(handlers.New(db, appLog, tokens), cfg)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("server_started", "", "server listening on "+cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLog.Error("server_failed", "", "failed to run server", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	appLog.Info("server_stopping", "", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server_shutdown_failed", "", "graceful shutdown failed", err)
	}
}
