// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aimehq/aime/internal/domain/snapshot"
	"github.com/aimehq/aime/pkg/logger"
)

// maxBodyBytes bounds every request body the API reads.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PartnerDependencies
	PersonaDependencies
	CreatorDependencies
	AnalyticsDependencies
	SignalDependencies
}

// Server wires HTTP routes for the admin API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	partnerHandler   *PartnerHandler
	personaHandler   *PersonaHandler
	creatorHandler   *CreatorHandler
	analyticsHandler *AnalyticsHandler
	signalHandler    *SignalHandler
}

// Provider is what the composition root hands to NewServer.
type Provider interface {
	StatusProvider
	StatsProvider
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, provider Provider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(provider),
		statsHandler:     NewStatsHandler(provider),
		partnerHandler:   NewPartnerHandler(deps),
		personaHandler:   NewPersonaHandler(deps),
		creatorHandler:   NewCreatorHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps),
		signalHandler:    NewSignalHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /api/health", "health", s.healthHandler.HandleHealth)
	route("GET /api/status", "status", s.healthHandler.HandleStatus)
	route("GET /api/stats", "stats", s.statsHandler.HandleStats)
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)

	p := s.partnerHandler
	route("GET /api/partner/list", "partner_list", p.HandleList)
	route("GET /api/partner/config", "partner_config", p.HandleConfig)
	route("POST /api/partner/config/reload", "partner_reload", p.HandleReload)
	route("GET /api/partner/config/status", "partner_status", p.HandleStatus)
	route("POST /api/partner/config/import", "partner_import", p.HandleImport)
	route("GET /api/partner/activations", "activations", p.HandleListActivations)
	route("POST /api/partner/activations", "activations", p.HandleActivate)
	route("PATCH /api/partner/activations/{campaignId}", "activation_status", p.HandleActivationStatus)
	route("GET /api/partner/handles", "handles", p.HandleHandles)
	route("POST /api/partner/handles/import", "handles_import", p.HandleImportHandles)

	ph := s.personaHandler
	route("GET /api/persona/match", "persona_match", ph.HandleMatch)
	route("GET /api/persona/definitions", "persona_definitions", ph.HandleDefinitions)
	route("GET /api/persona/definitions/{key}", "persona_definition", ph.HandleDefinition)
	route("GET /api/persona/list", "persona_list", ph.HandleList)
	route("GET /api/persona/{id}", "persona", ph.HandleGet)
	route("POST /api/persona", "persona_create", ph.HandleCreate)
	route("PATCH /api/persona/{id}", "persona_patch", ph.HandlePatch)
	route("DELETE /api/persona/{id}", "persona_delete", ph.HandleDelete)

	c := s.creatorHandler
	route("GET /api/creator/list", "creator_list", c.HandleList)
	route("GET /api/creator/{id}", "creator", c.HandleGet)
	route("POST /api/creator", "creator_upsert", c.HandleUpsert)
	route("POST /api/creator/assign", "creator_assign", c.HandleAssign)

	a := s.analyticsHandler
	for path, metric := range trendRoutes {
		route("GET /api/analytics/"+path, "analytics_trend", a.trendHandler(metric))
	}
	route("GET /api/analytics/trends", "analytics_trend", a.HandleTrend)
	route("GET /api/analytics/snapshot", "analytics_snapshot", a.HandleSnapshot)
	route("GET /api/analytics/campaign-performance", "campaign_performance", a.HandleCampaignPerformance)
	route("GET /api/analytics/export/{format}", "analytics_export", a.HandleExport)
	route("GET /api/logs/signals", "logs", a.logsHandler(snapshot.EntitySignals))
	route("GET /api/logs/comment-engine", "logs", a.logsHandler(snapshot.EntityComments))

	route("POST /api/signal/simulate", "signal_simulate", s.signalHandler.HandleSimulate)
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type okResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes the error body. Server
// side failures are logged with the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorCode(err)
	if status >= statusInternalError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", r.Header.Get(HeaderRequestID)),
			logger.Error(err))
	}
	writeJSON(w, status, errorResponse{OK: false, Code: code, Error: err.Error()})
}

// readBody returns the request body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind(op, ErrBodyTooLarge, err)
		}
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return body, nil
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	body, err := readBody(w, r, op)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// partnerParam returns the partner id from the query. Older clients send
// partnerId or partner_id.
func partnerParam(r *http.Request) string {
	q := r.URL.Query()
	for _, key := range []string{"partner", "partnerId", "partner_id"} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

// requirePartner is partnerParam for endpoints that reject a missing id.
func requirePartner(r *http.Request, op string) (string, error) {
	id := partnerParam(r)
	if id == "" {
		return "", NewKind(op, ErrMissingPartner)
	}
	return id, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
