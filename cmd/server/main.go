package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/config"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/infra"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/router"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Pretty console output outside production, JSON otherwise
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis backs the catalog cache, shared rate limits and the receipt
	// queue. Without it the API still serves every invoice operation.
	rdb, err := infra.NewRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache and receipt delivery")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	smtpBreaker := infra.NewCircuitBreaker(infra.BreakerConfig{Name: "smtp"})
	dispatcher := worker.NewDispatcher(rdb)

	if rdb != nil {
		receipts := worker.NewReceiptWorker(
			repository.NewInvoiceRepository(db),
			infra.NewMailer(cfg),
			smtpBreaker,
		)
		pool := worker.NewPool(rdb, map[string]worker.Handler{worker.JobTypeReceipt: receipts})
		pool.Start(ctx, cfg.WorkerPoolSize)
		worker.StartRedrive(ctx, worker.RedriveConfig{RDB: rdb, CB: smtpBreaker})
	}

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("invoice API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
