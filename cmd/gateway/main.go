package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter, cleanup := initRateLimiter(ctx, cfg, &logger)
	defer cleanup()

	upstream := gateway.NewServerClient(cfg.Gateway.ServerURL, cfg.Gateway.Timeout)
	gw, err := gateway.New(cfg.Gateway, upstream, limiter, &logger)
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go metrics.Serve(ctx, cfg.Monitoring.GatewayPrometheusPort, &logger)
	}

	return startGateway(ctx, gw, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App, "gateway")
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "gateway-main").Logger()

	return cfg, logger, closer, nil
}

// initRateLimiter prefers redis and keeps an in-memory store as fallback.
func initRateLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.RateLimitStore, func()) {
	if cfg.Gateway.RateLimit.Requests <= 0 {
		return nil, func() {}
	}

	memory := repository.NewMemoryRateLimitRepository()
	go sweepMemory(ctx, memory, cfg.Gateway.RateLimit.Window)

	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, rate limiting in memory")
		return memory, func() {}
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis connection failed, starting on memory fallback")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	store := repository.NewFailoverRateLimitRepository(repository.NewRedisRateLimitRepository(client), memory, logger)
	return store, func() { _ = repository.Close(client) }
}

func sweepMemory(ctx context.Context, memory *repository.MemoryRateLimitRepository, window time.Duration) {
	if window <= 0 {
		window = time.Minute
	}
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			memory.Sweep()
		}
	}
}

func startGateway(ctx context.Context, gw *gateway.Gateway, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Start()
	}()

	logger.Info().Int("http_port", cfg.Gateway.Port).Str("server_url", cfg.Gateway.ServerURL).Msg("ShareIt gateway started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("gateway stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("gateway shutdown")
	}

	logger.Info().Msg("ShareIt gateway stopped")
	return nil
}
