package balancer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/delivery-pricing/internal/metrics"
)

// StartHealthChecks launches the loop that probes every instance's health
// endpoint on a fixed interval. Instances start healthy optimistically; the
// loop flips them as probes succeed or fail.
func (lb *LoadBalancer) StartHealthChecks(ctx context.Context, interval time.Duration) {
	ctx, lb.cancel = context.WithCancel(ctx)
	go lb.healthCheckLoop(ctx, interval)
}

func (lb *LoadBalancer) healthCheckLoop(ctx context.Context, interval time.Duration) {
	defer close(lb.done)

	ticker := lb.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lb.logger.Info("Health check loop stopped")
			return
		case <-ticker.Chan():
			lb.probeAll(ctx)
		}
	}
}

func (lb *LoadBalancer) probeAll(ctx context.Context) {
	for _, inst := range lb.instances {
		healthy := lb.probe(ctx, inst.URL()+"/health", inst.Addr())

		changed := inst.SetHealthy(healthy)
		if !changed {
			continue
		}

		if healthy {
			lb.logger.Info("Instance is back up", slog.String("instance", inst.Addr()))
		} else {
			lb.logger.Warn("Instance is down", slog.String("instance", inst.Addr()))
		}

		lb.emitEvent(metrics.MetricEvent{
			Type:      metrics.EventHealthChanged,
			Timestamp: time.Now(),
			Instance:  inst.Addr(),
			Healthy:   healthy,
		})
	}
}

func (lb *LoadBalancer) probe(ctx context.Context, healthURL, addr string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}

	res, err := lb.clients[addr].Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK
}
