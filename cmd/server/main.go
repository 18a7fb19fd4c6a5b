package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"posdemo/backend/internal/config"
	"posdemo/backend/internal/httpapi"
	"posdemo/backend/internal/logging"
	"posdemo/backend/internal/service"
	"posdemo/backend/internal/store"
	"posdemo/backend/internal/store/memory"
	pgstore "posdemo/backend/internal/store/postgres"
	redisstore "posdemo/backend/internal/store/redis"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := validateConfig(cfg); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, closers, err := openKV(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).WithField("backend", cfg.Backend()).Fatal("persistence backend unavailable; refusing to start with in-memory fallback")
	}

	svc := service.New(kv, logger, service.Options{
		LowStockThreshold: cfg.LowStockThreshold,
		Currency:          cfg.CurrencyLabel,
	})
	if err := svc.Open(ctx); err != nil {
		logger.WithError(err).Fatal("load terminal state")
	}
	api := httpapi.New(svc, logger, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.Address()).Info("POS backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.WithError(err).Warn("close error")
		}
	}

	logger.Info("server stopped")
}

// openKV picks postgres, then redis, then memory. A configured backend that
// cannot be reached is an error rather than a silent fallback.
func openKV(ctx context.Context, cfg config.Config, logger *logrus.Logger) (store.KV, []func() error, error) {
	switch cfg.Backend() {
	case "postgres":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("backend", "postgres").Info("persistence ready")
		return pg, []func() error{pg.Close}, nil
	case "redis":
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KVPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		logger.WithField("backend", "redis").Info("persistence ready")
		return rs, []func() error{rs.Close}, nil
	default:
		logger.WithField("backend", "memory").Warn("no DATABASE_URL or REDIS_ADDR; state will not survive a restart")
		return memory.New(), nil, nil
	}
}

func validateConfig(cfg config.Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.AllowedOrigin == "" {
		return fmt.Errorf("ALLOWED_ORIGIN must not be empty")
	}
	if cfg.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must be 0 or greater")
	}
	if cfg.Backend() == "redis" && cfg.KVPrefix == "" {
		return fmt.Errorf("KV_PREFIX must be set when REDIS_ADDR is used")
	}
	return nil
}
