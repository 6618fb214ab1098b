// Package health provides liveness and readiness probe endpoints.
//
// Checks run on demand when a probe endpoint is hit, each bounded by its own
// timeout. Readiness additionally gates on a manual flag so a service can
// drop out of rotation ahead of a graceful shutdown.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports the health of one component; nil means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Health aggregates liveness and readiness checks for a service.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
}

// New creates a Health in the not-ready state. Call SetReady(true) once
// initialization is complete.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check for the liveness probe.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check for the readiness probe.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the manual readiness flag. Set it to false before shutdown
// to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// LiveEndpoint serves the liveness probe.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := h.liveness
	h.mu.RUnlock()

	h.respond(w, r, runChecks(r.Context(), checks), true)
}

// ReadyEndpoint serves the readiness probe.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := h.readiness
	h.mu.RUnlock()

	h.respond(w, r, runChecks(r.Context(), checks), h.ready.Load())
}

func runChecks(ctx context.Context, checks []check) map[string]string {
	results := make(map[string]string, len(checks))
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(checkCtx)
		cancel()
		if err != nil {
			results[c.name] = err.Error()
		} else {
			results[c.name] = "ok"
		}
	}
	return results
}

func (h *Health) respond(w http.ResponseWriter, _ *http.Request, results map[string]string, gate bool) {
	healthy := gate
	for _, v := range results {
		if v != "ok" {
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(results)
}
