// Command dopc runs a single delivery order price calculator instance
// without the load balancer in front, serving the pricing endpoint and
// /health directly on the configured server address.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/delivery-pricing/config"
	"github.com/angeloszaimis/delivery-pricing/internal/connpool"
	"github.com/angeloszaimis/delivery-pricing/internal/handler"
	"github.com/angeloszaimis/delivery-pricing/internal/httpserver"
	"github.com/angeloszaimis/delivery-pricing/internal/service"
	"github.com/angeloszaimis/delivery-pricing/internal/venueapi"
	"github.com/angeloszaimis/delivery-pricing/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := venueapi.New(cfg.Upstream.BaseURL)

	pool := connpool.New(connpool.Options{
		Size:           cfg.Instance.PoolSize,
		SweepInterval:  cfg.PoolSweepIntervalDuration(),
		RequestTimeout: cfg.RequestTimeoutDuration(),
		ProbeURL: func(role connpool.Role) string {
			return api.VenueURL(cfg.Instance.ProbeVenue, string(role))
		},
	}, log)
	pool.Start(ctx)

	svc := service.New(log, pool, api, cfg.Instance.MaxConcurrentRequests)
	priceHandler := handler.NewPriceHandler(log, svc)

	srv, err := httpserver.New(cfg.Server.Address, priceHandler.Routes(cfg.Server.Endpoint))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	if err := srv.Listen(); err != nil {
		log.Error("Failed to bind listener", slog.String("address", cfg.Server.Address), slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("DOPC instance listening", slog.String("address", srv.Addr()))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
		pool.Stop()
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error running DOPC instance", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
