// Package ops serves the health, readiness and metrics endpoints.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"reviewgate/internal/common/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// ComponentCheck is the outcome of one Check.
type ComponentCheck struct {
	Status  string `json:"status"` // "up" or "down"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

const checkTimeout = 2 * time.Second

type health struct {
	version string
	started time.Time
	checks  map[string]Check
}

// NewRouter builds the ops router:
//
//	GET /health   liveness, always 200
//	GET /ready    200 when every check passes, 503 otherwise
//	GET /metrics  prometheus
func NewRouter(version string, checks map[string]Check) http.Handler {
	h := &health{version: version, started: time.Now(), checks: checks}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (h *health) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *health) handleReady(w http.ResponseWriter, r *http.Request) {
	results := h.run(r.Context())

	ready := true
	for _, c := range results {
		if c.Status != "up" {
			ready = false
		}
	}
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]interface{}{
		"ready":  ready,
		"checks": results,
	})
}

func (h *health) run(ctx context.Context) map[string]ComponentCheck {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]ComponentCheck, len(names))
	)
	for _, name := range names {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			start := time.Now()
			err := check(cctx)
			res := ComponentCheck{Status: "up", Latency: time.Since(start).String()}
			if err != nil {
				res.Status = "down"
				res.Message = err.Error()
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name, h.checks[name])
	}
	wg.Wait()
	return results
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Serve runs handler on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("ops server listening", map[string]interface{}{"address": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
