package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amarinov/finance-api/internal/clients/yahoo"
	"github.com/amarinov/finance-api/internal/config"
	"github.com/amarinov/finance-api/internal/database"
	"github.com/amarinov/finance-api/internal/marketdata"
	"github.com/amarinov/finance-api/internal/modules/etfsim"
	"github.com/amarinov/finance-api/internal/modules/simulator"
	"github.com/amarinov/finance-api/internal/scheduler"
	"github.com/amarinov/finance-api/internal/server"
	"github.com/amarinov/finance-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting finance-api")

	// Price history cache store
	db, err := database.New(cfg.CachePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer db.Close()

	// Price history provider: Yahoo chart API behind a sqlite TTL cache
	var quotes *yahoo.Client
	if cfg.QuoteProxyURL != "" {
		quotes = yahoo.NewClientWithBaseURL(cfg.QuoteProxyURL, log)
	} else {
		quotes = yahoo.NewClient(log)
	}

	provider, err := marketdata.NewCachedProvider(quotes, db, cfg.CacheTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize price cache")
	}

	// Background jobs
	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", marketdata.NewPruneJob(provider, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache prune job")
	}
	sched.Start()
	defer sched.Stop()

	// Simulation services
	simService := simulator.NewService(provider, cfg.MaxDataPoints, log)
	etfService := etfsim.NewService(provider, cfg.MaxDataPoints, log)

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Simulator: simulator.NewHandler(simService, log),
		EtfSim:    etfsim.NewHandler(etfService, log),
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
