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

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/service"

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, cfg.Database, &logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	bus := events.NewEventBus()
	subscribeBookingEvents(bus, &logger)

	items := service.NewItemService(db, db, db, db, db, &logger)
	services := api.Services{
		Users:    service.NewUserService(db, &logger),
		Items:    items,
		Bookings: service.NewBookingService(db, db, db, bus, &logger),
		Requests: service.NewRequestService(db, db, items, &logger),
	}
	httpServer := api.NewHTTPServer(cfg.Server, services, db, &logger)

	startMetrics(ctx, cfg, &logger)

	if cfg.Backup.Enabled {
		go database.NewBackupService(db, cfg.Backup, &logger).Start(ctx)
	}

	return startServer(ctx, httpServer, cfg, &logger)
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

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App, "server")
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

// subscribeBookingEvents counts and logs every booking transition.
func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.SubscribeAll(func(ev *events.Event) error {
		metrics.IncBookingEvent(ev.Type)

		var payload events.BookingEventPayload
		if err := ev.Decode(&payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Int64("booking_id", payload.BookingID).
			Int64("item_id", payload.ItemID).
			Int64("actor_id", payload.ActorID).
			Str("status", payload.Status).
			Msg("booking event")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go metrics.Serve(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("ShareIt server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("ShareIt server stopped")
	return nil
}
