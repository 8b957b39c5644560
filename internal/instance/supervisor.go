package instance

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/delivery-pricing/internal/connpool"
	"github.com/angeloszaimis/delivery-pricing/internal/httpserver"
)

// Options configures the supervised instance fleet.
type Options struct {
	Count    int
	Host     string
	BasePort int
}

// Builder constructs one instance's request pipeline. It receives the
// instance address for log tagging and returns the instance's HTTP handler
// together with the connection pool whose lifecycle the supervisor manages.
type Builder func(addr string) (http.Handler, *connpool.Pool)

// Supervisor starts and stops the pricing instances owned by the balancer
// process. Instances replace the original's subprocess-per-port model: each
// one still binds its own port and owns its own pool, but runs in-process.
type Supervisor struct {
	logger    *slog.Logger
	opts      Options
	build     Builder
	instances []*Instance
	serveErrs chan error
}

func NewSupervisor(logger *slog.Logger, opts Options, build Builder) *Supervisor {
	return &Supervisor{
		logger:    logger,
		opts:      opts,
		build:     build,
		serveErrs: make(chan error, opts.Count),
	}
}

// StartAll binds and serves every instance, marking each healthy
// optimistically. A bind failure aborts startup: it is the one fatal
// condition, and a partially started fleet is torn down before returning.
func (s *Supervisor) StartAll(ctx context.Context) error {
	for i := 0; i < s.opts.Count; i++ {
		addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.BasePort+i)

		handler, pool := s.build(addr)

		srv, err := httpserver.New(addr, handler)
		if err != nil {
			s.StopAll(ctx)
			return fmt.Errorf("instance %s: %w", addr, err)
		}

		if err := srv.Listen(); err != nil {
			s.StopAll(ctx)
			return fmt.Errorf("failed to bind instance listener %s: %w", addr, err)
		}

		pool.Start(ctx)

		// The listener address, not the configured one, so ":0" resolves.
		inst := &Instance{
			addr:      srv.Addr(),
			srv:       srv,
			pool:      pool,
			isHealthy: true,
		}
		s.instances = append(s.instances, inst)

		go func() {
			if err := srv.Start(); err != nil {
				s.serveErrs <- fmt.Errorf("instance %s: %w", inst.addr, err)
			}
		}()

		s.logger.Info("Started pricing instance", slog.String("addr", addr))
	}

	return nil
}

// Instances returns the supervised instance set. The slice is fixed after
// StartAll; only each instance's health status changes afterwards.
func (s *Supervisor) Instances() []*Instance {
	return s.instances
}

// ServeErrors reports instance servers that exited with an error.
func (s *Supervisor) ServeErrors() <-chan error {
	return s.serveErrs
}

// StopAll shuts down every instance server and its connection pool.
func (s *Supervisor) StopAll(ctx context.Context) {
	for _, inst := range s.instances {
		if err := inst.srv.Shutdown(ctx); err != nil {
			s.logger.Error("Error shutting down instance",
				slog.String("addr", inst.addr),
				slog.Any("err", err))
		}
		inst.pool.Stop()
	}

	s.logger.Info("All pricing instances stopped")
}
