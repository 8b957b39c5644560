package connpool

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/angeloszaimis/delivery-pricing/internal/venueapi"
)

// Role selects which upstream endpoint a pooled connection serves. The
// values are venueapi's role path segments so the two cannot drift.
type Role string

const (
	RoleStatic  Role = venueapi.RoleStatic
	RoleDynamic Role = venueapi.RoleDynamic
)

// slot is one long-lived pooled connection. The transport is kept alongside
// the client so replacement can close exactly this slot's idle sockets.
// Health is not tracked on the slot: a slot that fails its probe is swapped
// out whole rather than flagged.
type slot struct {
	client    *http.Client
	transport *http.Transport
}

// Options configures a Pool.
type Options struct {
	// Size is the number of slots per role.
	Size int
	// SweepInterval is how often the health sweep probes every slot.
	SweepInterval time.Duration
	// ProbeURL returns the upstream health-probe URL for a role.
	ProbeURL func(role Role) string
	// RequestTimeout bounds each pooled client's requests, probes included.
	RequestTimeout time.Duration
	// Clock drives the sweep; tests inject a fake clock.
	Clock clockwork.Clock
}

// Pool owns two fixed-size slot arrays of upstream connections and a
// background health sweep that replaces failing slots in place.
type Pool struct {
	opts   Options
	logger *slog.Logger

	mutex         sync.RWMutex
	staticSlots   []*slot
	dynamicSlots  []*slot
	staticCursor  atomic.Uint64
	dynamicCursor atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts Options, logger *slog.Logger) *Pool {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	p := &Pool{
		opts:         opts,
		logger:       logger,
		staticSlots:  make([]*slot, opts.Size),
		dynamicSlots: make([]*slot, opts.Size),
		done:         make(chan struct{}),
	}

	for i := 0; i < opts.Size; i++ {
		p.staticSlots[i] = p.newSlot()
		p.dynamicSlots[i] = p.newSlot()
	}

	return p
}

func (p *Pool) newSlot() *slot {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     90 * time.Second,
	}
	return &slot{
		client: &http.Client{
			Transport: transport,
			Timeout:   p.opts.RequestTimeout,
		},
		transport: transport,
	}
}

// Acquire returns the next connection for the role, round-robin over the
// role's slots. It never blocks and never inspects slot health.
func (p *Pool) Acquire(role Role) *http.Client {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if role == RoleDynamic {
		n := p.dynamicCursor.Add(1)
		return p.dynamicSlots[(n-1)%uint64(len(p.dynamicSlots))].client
	}

	n := p.staticCursor.Add(1)
	return p.staticSlots[(n-1)%uint64(len(p.staticSlots))].client
}

// Size returns the number of slots per role.
func (p *Pool) Size() int {
	return p.opts.Size
}

// Start launches the background health sweep. The sweep runs until Stop is
// called or the context is cancelled.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	go p.sweep(ctx)

	p.logger.Info("Connection pools started",
		slog.Int("pool_size", p.opts.Size),
		slog.Duration("sweep_interval", p.opts.SweepInterval))
}

// Stop cancels the sweep, waits for it to exit, and closes every slot's
// network resources.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	for _, s := range p.staticSlots {
		s.transport.CloseIdleConnections()
	}
	for _, s := range p.dynamicSlots {
		s.transport.CloseIdleConnections()
	}

	p.logger.Info("Connection pools stopped")
}

func (p *Pool) sweep(ctx context.Context) {
	defer close(p.done)

	ticker := p.opts.Clock.NewTicker(p.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Pool health sweep stopped")
			return
		case <-ticker.Chan():
			p.sweepRole(ctx, RoleStatic)
			p.sweepRole(ctx, RoleDynamic)
		}
	}
}

func (p *Pool) sweepRole(ctx context.Context, role Role) {
	for i := 0; i < p.opts.Size; i++ {
		p.mutex.RLock()
		s := p.roleSlots(role)[i]
		p.mutex.RUnlock()

		if p.probe(ctx, s, role) {
			continue
		}

		p.logger.Warn("Replacing unhealthy pooled connection",
			slog.String("role", string(role)),
			slog.Int("slot", i))
		p.replaceSlot(role, i)
	}
}

// probe issues a lightweight request to the role's probe URL through the
// slot's own client. Any response that is not a server error counts as
// healthy; transport errors do not.
func (p *Pool) probe(ctx context.Context, s *slot, role Role) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.ProbeURL(role), nil)
	if err != nil {
		return false
	}

	res, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode != http.StatusInternalServerError
}

// replaceSlot closes the old connection best-effort and installs a fresh one
// at the same index, so in-flight Acquire callers only ever see a complete
// slot array.
func (p *Pool) replaceSlot(role Role, index int) {
	fresh := p.newSlot()

	p.mutex.Lock()
	slots := p.roleSlots(role)
	old := slots[index]
	slots[index] = fresh
	p.mutex.Unlock()

	old.transport.CloseIdleConnections()
}

func (p *Pool) roleSlots(role Role) []*slot {
	if role == RoleDynamic {
		return p.dynamicSlots
	}
	return p.staticSlots
}
