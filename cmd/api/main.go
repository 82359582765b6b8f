package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cimillas/concert-ledger/internal/app"
	"github.com/cimillas/concert-ledger/internal/clock"
	"github.com/cimillas/concert-ledger/internal/config"
	"github.com/cimillas/concert-ledger/internal/logging"
	"github.com/cimillas/concert-ledger/internal/metrics"
	"github.com/cimillas/concert-ledger/internal/storage"
	transporthttp "github.com/cimillas/concert-ledger/internal/transport/http"
)

const startupTimeout = 5 * time.Second

func main() {
	envPath, envErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		boot := logging.New(logging.Config{})
		boot.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	switch {
	case envErr != nil:
		logger.Warn().Err(envErr).Msg("failed to load .env")
	case envPath != "":
		logger.Info().Str("path", envPath).Msg("loaded env file")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := storage.Open(startupCtx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	ledger := app.NewLedger(store, clock.NewSystem(), logger)
	handler := transporthttp.NewRouter(ledger, transporthttp.RouterOptions{
		Logger:      logger.With().Str("component", "http").Logger(),
		Metrics:     metrics.New(),
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	logger.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Store.Driver).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
	return nil
}
