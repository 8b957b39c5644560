package instance

import (
	"sync"
	"time"

	"github.com/angeloszaimis/delivery-pricing/internal/connpool"
	"github.com/angeloszaimis/delivery-pricing/internal/httpserver"
)

// Instance is one pricing service instance known to the balancer. Instances
// are created at balancer start and live until balancer shutdown; only their
// health status changes in between.
type Instance struct {
	addr string
	srv  *httpserver.Server
	pool *connpool.Pool

	mutex       sync.Mutex
	isHealthy   bool
	lastChecked time.Time
}

// New creates a registry entry for an already-running instance at addr.
// The instance starts in a healthy state. Instances started by the
// Supervisor also carry their server and pool handles for shutdown.
func New(addr string) *Instance {
	return &Instance{
		addr:      addr,
		isHealthy: true,
	}
}

// Addr returns the instance's host:port.
func (i *Instance) Addr() string {
	return i.addr
}

// URL returns the instance's base URL.
func (i *Instance) URL() string {
	return "http://" + i.addr
}

// IsHealthy returns true if the instance passed its most recent probe.
func (i *Instance) IsHealthy() bool {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.isHealthy
}

// SetHealthy updates the instance's health status and probe timestamp.
// Returns true if the status changed, false if it was already in that state.
func (i *Instance) SetHealthy(healthy bool) (changed bool) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	i.lastChecked = time.Now()

	if i.isHealthy == healthy {
		return false
	}

	i.isHealthy = healthy
	return true
}

// LastChecked returns when the instance was last probed.
func (i *Instance) LastChecked() time.Time {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.lastChecked
}
