package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/angeloszaimis/delivery-pricing/config"
	"github.com/angeloszaimis/delivery-pricing/internal/balancer"
	"github.com/angeloszaimis/delivery-pricing/internal/connpool"
	"github.com/angeloszaimis/delivery-pricing/internal/handler"
	"github.com/angeloszaimis/delivery-pricing/internal/httpserver"
	"github.com/angeloszaimis/delivery-pricing/internal/instance"
	"github.com/angeloszaimis/delivery-pricing/internal/metrics"
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
	clock := clockwork.NewRealClock()

	supervisor := instance.NewSupervisor(log, instance.Options{
		Count:    cfg.Balancer.Instances,
		Host:     "127.0.0.1",
		BasePort: cfg.Balancer.BasePort,
	}, buildInstance(cfg, log, api, clock))

	if err := supervisor.StartAll(ctx); err != nil {
		log.Error("Failed to start pricing instances", slog.Any("err", err))
		os.Exit(1)
	}

	go func() {
		for err := range supervisor.ServeErrors() {
			log.Error("Pricing instance exited", slog.Any("err", err))
		}
	}()

	collector := metrics.NewCollector(1000, log)
	collector.Start(ctx)

	lb := balancer.New(log, supervisor.Instances(), cfg.Server.Endpoint, collector, clock)
	lb.StartHealthChecks(ctx, cfg.HealthCheckIntervalDuration())

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(lb, collector))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	if err := srv.Listen(); err != nil {
		log.Error("Failed to bind listener", slog.String("address", cfg.Server.Address), slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Load balancer listening",
		slog.String("address", srv.Addr()),
		slog.Int("instances", cfg.Balancer.Instances))

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
		lb.Stop()
		supervisor.StopAll(context.Background())
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error running load balancer", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// buildInstance wires one pricing instance: its own connection pool,
// admission-gated service, and HTTP handler, all tagged with the instance
// address in logs.
func buildInstance(cfg *config.Config, log *slog.Logger, api *venueapi.Client, clock clockwork.Clock) instance.Builder {
	return func(addr string) (http.Handler, *connpool.Pool) {
		instLog := logger.WithInstance(log, addr)

		pool := connpool.New(connpool.Options{
			Size:           cfg.Instance.PoolSize,
			SweepInterval:  cfg.PoolSweepIntervalDuration(),
			RequestTimeout: cfg.RequestTimeoutDuration(),
			ProbeURL: func(role connpool.Role) string {
				return api.VenueURL(cfg.Instance.ProbeVenue, string(role))
			},
			Clock: clock,
		}, instLog)

		svc := service.New(instLog, pool, api, cfg.Instance.MaxConcurrentRequests)
		priceHandler := handler.NewPriceHandler(instLog, svc)

		return priceHandler.Routes(cfg.Server.Endpoint), pool
	}
}
