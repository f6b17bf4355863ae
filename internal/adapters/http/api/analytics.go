package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aimehq/aime/internal/domain/snapshot"
	"github.com/aimehq/aime/internal/domain/trend"
)

// AnalyticsDependencies defines the trend, snapshot and export operations.
type AnalyticsDependencies interface {
	Trend(ctx context.Context, partnerID string, metric trend.Metric, r trend.Range) (trend.Series, error)
	Snapshot(ctx context.Context, partnerID string) (snapshot.Snapshot, error)
	CampaignPerformance(ctx context.Context, partnerID string) ([]snapshot.Row, error)
	Logs(ctx context.Context, partnerID string, e snapshot.Entity) ([]snapshot.Row, error)
	Export(ctx context.Context, partnerID string, e snapshot.Entity, format snapshot.Format) (snapshot.Export, error)
}

// trendRoutes maps the per-metric analytics paths to their metric.
var trendRoutes = map[string]trend.Metric{
	"signal-volume":  trend.MetricSignals,
	"comment-volume": trend.MetricComments,
	"latency":        trend.MetricLatencyMs,
	"error-rate":     trend.MetricErrorRate,
}

// AnalyticsHandler handles analytics, log and export requests.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleTrend handles GET /api/analytics/trends?partner=&metric=&range=.
func (h *AnalyticsHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.trend"
	metric, err := trend.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	h.trendHandler(metric)(w, r)
}

func (h *AnalyticsHandler) trendHandler(metric trend.Metric) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.trend"
		id, err := requirePartner(r, op)
		if err != nil {
			writeError(w, r, err)
			return
		}
		series, err := h.deps.Trend(r.Context(), id, metric, trend.ParseRange(r.URL.Query().Get("range")))
		if err != nil {
			writeError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, series)
	}
}

// HandleSnapshot handles GET /api/analytics/snapshot. Unknown partners get
// the default partner's snapshot.
func (h *AnalyticsHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.snapshot"
	snap, err := h.deps.Snapshot(r.Context(), partnerParam(r))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleCampaignPerformance handles GET /api/analytics/campaign-performance.
func (h *AnalyticsHandler) HandleCampaignPerformance(w http.ResponseWriter, r *http.Request) {
	const op = "api.campaign_performance"
	id, err := requirePartner(r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.deps.CampaignPerformance(r.Context(), id)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(rows))
}

func (h *AnalyticsHandler) logsHandler(e snapshot.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.logs"
		rows, err := h.deps.Logs(r.Context(), partnerParam(r), e)
		if err != nil {
			writeError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, orEmpty(rows))
	}
}

// HandleExport handles GET /api/analytics/export/{format}?partner=&entity=.
// An entity without rows answers 204.
func (h *AnalyticsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	format := snapshot.Format(r.PathValue("format"))
	if format != snapshot.FormatCSV && format != snapshot.FormatXLSX {
		writeError(w, r, NewKind(op, ErrExportFormat))
		return
	}
	entity := snapshot.ParseEntity(r.URL.Query().Get("entity"))
	out, err := h.deps.Export(r.Context(), partnerParam(r), entity, format)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	if len(out.Body) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}
