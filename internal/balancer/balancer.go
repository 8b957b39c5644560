package balancer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/angeloszaimis/delivery-pricing/internal/instance"
	"github.com/angeloszaimis/delivery-pricing/internal/metrics"
)

// ErrNoHealthyInstances is returned by SelectNext when every instance is
// currently failing its health probe.
var ErrNoHealthyInstances = errors.New("no healthy instances available")

// LoadBalancer owns the instance registry, the per-instance persistent
// clients, and the round-robin cursor over the healthy subset.
type LoadBalancer struct {
	logger    *slog.Logger
	instances []*instance.Instance
	clients   map[string]*http.Client
	endpoint  string
	collector *metrics.Collector
	clock     clockwork.Clock

	mutex  sync.Mutex
	cursor int

	cancel context.CancelFunc
	done   chan struct{}
}

func New(logger *slog.Logger, instances []*instance.Instance, endpoint string, collector *metrics.Collector, clock clockwork.Clock) *LoadBalancer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	clients := make(map[string]*http.Client, len(instances))
	for _, inst := range instances {
		clients[inst.Addr()] = &http.Client{Timeout: 5 * time.Second}
	}

	return &LoadBalancer{
		logger:    logger,
		instances: instances,
		clients:   clients,
		endpoint:  endpoint,
		collector: collector,
		clock:     clock,
		done:      make(chan struct{}),
	}
}

// Instances returns the full instance registry, healthy or not.
func (lb *LoadBalancer) Instances() []*instance.Instance {
	return lb.instances
}

// SelectNext round-robins over the instances currently passing health
// probes. Because the healthy set can shrink or grow between calls, the
// cursor is reinterpreted against the set's current size each time; churn
// can therefore skip or repeat a member across a resize.
func (lb *LoadBalancer) SelectNext() (*instance.Instance, error) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	healthy := make([]*instance.Instance, 0, len(lb.instances))
	for _, inst := range lb.instances {
		if inst.IsHealthy() {
			healthy = append(healthy, inst)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstances
	}

	index := lb.cursor % len(healthy)
	lb.cursor = (index + 1) % len(healthy)

	return healthy[index], nil
}

// Forward relays the client's query to the next healthy instance over its
// persistent connection and copies the instance's status code and body back
// verbatim.
func (lb *LoadBalancer) Forward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not supported. Only GET requests are allowed.", r.Method))
		return
	}

	inst, err := lb.SelectNext()
	if err != nil {
		lb.logger.Warn("No healthy instances available", slog.String("client", r.RemoteAddr))
		writeError(w, http.StatusServiceUnavailable, "No healthy server available")
		return
	}

	lb.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Instance:  inst.Addr(),
	})
	lb.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventInstanceSelected,
		Timestamp: time.Now(),
		Instance:  inst.Addr(),
	})

	lb.logger.Info("Forwarding to instance",
		slog.String("client", r.RemoteAddr),
		slog.String("instance", inst.Addr()))

	start := time.Now()

	target := inst.URL() + lb.endpoint
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Load balancer error: %v", err))
		return
	}

	res, err := lb.clients[inst.Addr()].Do(req)
	if err != nil {
		lb.logger.Error("Forwarding failed",
			slog.String("instance", inst.Addr()),
			slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Load balancer error: %v", err))
		return
	}
	defer res.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Instance", inst.Addr())
	w.WriteHeader(res.StatusCode)
	_, _ = io.Copy(w, res.Body)

	lb.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Instance:   inst.Addr(),
		Duration:   time.Since(start),
		StatusCode: res.StatusCode,
	})
}

// Stop halts the health-check loop and closes all persistent connections.
// The instances themselves are torn down by their supervisor.
func (lb *LoadBalancer) Stop() {
	if lb.cancel != nil {
		lb.cancel()
		<-lb.done
	}

	for _, client := range lb.clients {
		client.CloseIdleConnections()
	}

	lb.logger.Info("Load balancer stopped")
}

func (lb *LoadBalancer) emitEvent(event metrics.MetricEvent) {
	if lb.collector == nil {
		return
	}

	select {
	case lb.collector.EventChannel() <- event:
	default:
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg,
	})
}
