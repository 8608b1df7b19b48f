package health

import (
	"encoding/json"
	"net/http"
)

// Handler exposes the monitor over HTTP.
type Handler struct {
	monitor *Monitor
}

// NewHandler creates a health handler.
func NewHandler(monitor *Monitor) *Handler {
	return &Handler{monitor: monitor}
}

// Register mounts /health and /health/detailed on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /health/detailed", h.handleDetailed)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.monitor.CheckHealth(r.Context())

	response := map[string]string{"status": string(report.SystemStatus)}
	w.Header().Set("Content-Type", "application/json")

	if report.SystemStatus == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(response)
}

func (h *Handler) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := h.monitor.CheckHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
