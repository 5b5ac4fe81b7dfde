// Package health exposes liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes the snapshot backend for readiness.
type Checker interface {
	PingSnapshot(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker         Checker
	SnapshotTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the snapshot backend probe.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	snapshotStatus := "ok"
	if err := h.Checker.PingSnapshot(r.Context(), h.snapshotTimeout()); err != nil {
		snapshotStatus = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	if snapshotStatus != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"snapshot": snapshotStatus})
}

func (h Handler) snapshotTimeout() time.Duration {
	if h.SnapshotTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.SnapshotTimeout
}
