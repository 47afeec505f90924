package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api"
	"github.com/DMHCAIT/crm-backend-sub002/internal/database"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	noDB := flag.Bool("no-db", false, "run without a database; only the configured admin can log in")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode())
	log := logger.NewLogger(cfg.Logging)

	for _, warning := range cfg.Warnings() {
		log.Warning(warning)
	}
	log.WithField("config", cfg.SanitizeForLogging()).Debug("Configuration loaded")

	var db *sql.DB
	if !*noDB {
		db, err = database.NewConnection(&cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", "error", err.Error())
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(context.Background(), db); err != nil {
				log.Fatal("Failed to run migrations", "error", err.Error())
			}
		}
	}

	services, err := api.NewServices(db, log, cfg)
	if err != nil {
		log.Fatal("Failed to initialise services", "error", err.Error())
	}
	log.Info("Role levels loaded", "ranks", services.Policy().Ranks().String())

	router := gin.New()
	api.SetupRoutes(router, services, cfg)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting CRM server", "addr", srv.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("Shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", "error", err.Error())
	}
}
