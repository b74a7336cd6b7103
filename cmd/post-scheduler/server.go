// cmd/post-scheduler/server.go
package main

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-post-scheduler/internal/scheduler"
)

type stateReporter interface {
	State() scheduler.State
}

// newMux serves /health, /ready and /metrics. Ready means the scheduler
// is waiting for or running a slot.
func newMux(runner stateReporter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		state := runner.State()
		status, code := "ready", http.StatusOK
		if state != scheduler.StateWaiting && state != scheduler.StateRunning {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"state":  string(state),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// startHTTPServer starts the metrics server when metrics are enabled.
func (a *app) startHTTPServer() *http.Server {
	if !a.cfg.Metrics.Enabled {
		return nil
	}

	srv := &http.Server{
		Addr:              a.cfg.Metrics.Address,
		Handler:           newMux(a.runner),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.log.Info("HTTP server started", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", map[string]interface{}{"error": err})
		}
	}()
	return srv
}
