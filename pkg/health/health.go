// Package health provides Kubernetes-style liveness and readiness probes.
//
// Probes run in background goroutines at a fixed interval. A probe flips to
// unhealthy only after failing consecutively failureThreshold times, so a
// single slow database ping does not take the service out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// ProbeFunc checks one component. It returns nil when healthy.
type ProbeFunc func(ctx context.Context) error

const defaultFailureThreshold = 3

// probe holds the configuration and runtime state of a single check.
//
// Concurrency: run() executes on exactly one goroutine per probe, so fails
// needs no synchronization. healthy and lastErr are read by HTTP handlers
// from arbitrary goroutines and use atomics.
type probe struct {
	name    string
	timeout time.Duration
	fn      ProbeFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]
	fails   int
}

func newProbe(name string, timeout time.Duration, fn ProbeFunc) *probe {
	p := &probe{name: name, timeout: timeout, fn: fn}
	p.healthy.Store(true) // assume healthy until proven otherwise
	return p
}

func (p *probe) run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.fn(probeCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.fails++
		if p.fails >= defaultFailureThreshold {
			p.healthy.Store(false)
		}
		return
	}
	p.fails = 0
	p.healthy.Store(true)
}

func (p *probe) failure() string {
	if p.healthy.Load() {
		return ""
	}
	if errp := p.lastErr.Load(); errp != nil && *errp != nil {
		return (*errp).Error()
	}
	return "probe is unhealthy"
}

// Service manages liveness and readiness probes and serves their endpoints.
type Service struct {
	ready atomic.Bool

	// mu guards the probe slices and cancel. Registration happens before
	// Start; handlers only take short read locks to snapshot the slices.
	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates a health Service. It starts not-ready; call SetReady(true)
// after initialization completes.
func New() *Service {
	return &Service{}
}

// AddLivenessProbe registers a liveness probe (is the process functioning:
// goroutine leaks, deadlocks).
func (s *Service) AddLivenessProbe(name string, timeout time.Duration, fn ProbeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, newProbe(name, timeout, fn))
}

// AddReadinessProbe registers a readiness probe (may the service receive
// traffic: database connectivity, dependency availability).
func (s *Service) AddReadinessProbe(name string, timeout time.Duration, fn ProbeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, newProbe(name, timeout, fn))
}

// Start launches one goroutine per registered probe, each running at the
// given interval until Stop or context cancellation.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := make([]*probe, 0, len(s.liveness)+len(s.readiness))
	probes = append(probes, s.liveness...)
	probes = append(probes, s.readiness...)
	s.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.run(ctx)
				}
			}
		}(p)
	}
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Set false during graceful
// shutdown to drain traffic before the listener closes.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the service is marked ready AND every readiness
// probe currently passes.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}

	s.mu.RLock()
	probes := s.readiness
	s.mu.RUnlock()

	for _, p := range probes {
		if !p.healthy.Load() {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Probes map[string]string `json:"probes,omitempty"`
}

// LiveEndpoint serves /livez: 200 when all liveness probes pass, 503 with
// per-probe failure details otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	probes := make([]*probe, len(s.liveness))
	copy(probes, s.liveness)
	s.mu.RUnlock()

	writeStatus(w, failures(probes))
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready and all
// readiness probes pass, 503 with details otherwise.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	probes := make([]*probe, len(s.readiness))
	copy(probes, s.readiness)
	s.mu.RUnlock()

	f := failures(probes)
	if !s.ready.Load() {
		f["_readiness"] = "service is not ready"
	}
	writeStatus(w, f)
}

func failures(probes []*probe) map[string]string {
	f := make(map[string]string)
	for _, p := range probes {
		if msg := p.failure(); msg != "" {
			f[p.name] = msg
		}
	}
	return f
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Probes = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
