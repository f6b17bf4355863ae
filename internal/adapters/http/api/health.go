package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimehq/aime/pkg/metrics"
)

// ServiceName is reported by the liveness endpoint.
const ServiceName = "aime-admin"

// StatusProvider exposes the runtime facts shown by /api/status.
type StatusProvider interface {
	Env() string
	Flags() map[string]bool
	Now() time.Time
	PartnerIDs() []string
}

// HealthHandler handles liveness, status and metrics requests.
type HealthHandler struct {
	status StatusProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(status StatusProvider) *HealthHandler {
	return &HealthHandler{status: status}
}

type healthResponse struct {
	OK      bool      `json:"ok"`
	Service string    `json:"service"`
	TS      time.Time `json:"ts"`
}

type statusResponse struct {
	Env      string          `json:"env"`
	Flags    map[string]bool `json:"flags"`
	Time     time.Time       `json:"time"`
	Partners []string        `json:"partners"`
}

// HandleHealth handles GET /api/health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Service: ServiceName, TS: h.status.Now().UTC()})
}

// HandleStatus handles GET /api/status.
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Env:      h.status.Env(),
		Flags:    h.status.Flags(),
		Time:     h.status.Now().UTC(),
		Partners: orEmpty(h.status.PartnerIDs()),
	})
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
