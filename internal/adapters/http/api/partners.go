package api

import (
	"context"
	"net/http"

	repository "github.com/aimehq/aime/internal/adapters/repository"
	"github.com/aimehq/aime/internal/domain/campaign"
	"github.com/aimehq/aime/internal/domain/partner"
)

// PartnerDependencies defines the partner table, import and campaign
// persistence operations.
type PartnerDependencies interface {
	Partners(ctx context.Context) []partner.Config
	PartnerConfig(ctx context.Context, id string) (partner.Config, error)
	ReloadPartners(ctx context.Context) (repository.LoadReport, error)
	LoadReport(ctx context.Context) repository.LoadReport
	ImportPartnerConfig(ctx context.Context, body []byte) (repository.ImportResult, error)

	Activations(ctx context.Context, partnerID string) ([]campaign.Activation, error)
	Activate(ctx context.Context, req campaign.Request) (campaign.Activation, error)
	SetActivationStatus(ctx context.Context, partnerID, campaignID, status string) (campaign.Activation, error)
	ImportHandles(ctx context.Context, body []byte) (int, error)
	Handles(ctx context.Context) []campaign.Handle
}

// PartnerHandler handles partner config and campaign requests.
type PartnerHandler struct {
	deps PartnerDependencies
}

// NewPartnerHandler creates a new partner handler.
func NewPartnerHandler(deps PartnerDependencies) *PartnerHandler {
	return &PartnerHandler{deps: deps}
}

type partnerSummary struct {
	PartnerID string       `json:"partnerId"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Version   string       `json:"version,omitempty"`
	Tier      partner.Tier `json:"tier"`
}

// HandleList handles GET /api/partner/list.
func (h *PartnerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cfgs := h.deps.Partners(r.Context())
	out := make([]partnerSummary, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, partnerSummary{
			PartnerID: c.PartnerID,
			Name:      c.Name,
			Slug:      c.Slug,
			Version:   c.Version,
			Tier:      c.TrafficProfile.Tier,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleConfig handles GET /api/partner/config?partner=ID.
func (h *PartnerHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.partner_config"
	id, err := requirePartner(r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cfg, err := h.deps.PartnerConfig(r.Context(), id)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleReload handles POST /api/partner/config/reload.
func (h *PartnerHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.partner_reload"
	report, err := h.deps.ReloadPartners(r.Context())
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleStatus handles GET /api/partner/config/status.
func (h *PartnerHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.LoadReport(r.Context()))
}

// HandleImport handles POST /api/partner/config/import.
func (h *PartnerHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.partner_import"
	body, err := readBody(w, r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.ImportPartnerConfig(r.Context(), body)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleListActivations handles GET /api/partner/activations[?partner=ID].
func (h *PartnerHandler) HandleListActivations(w http.ResponseWriter, r *http.Request) {
	const op = "api.activations"
	list, err := h.deps.Activations(r.Context(), partnerParam(r))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// HandleActivate handles POST /api/partner/activations.
func (h *PartnerHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	const op = "api.activate"
	var req campaign.Request
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.deps.Activate(r.Context(), req)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleActivationStatus handles PATCH /api/partner/activations/{campaignId}?partner=ID.
func (h *PartnerHandler) HandleActivationStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.activation_status"
	id, err := requirePartner(r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.deps.SetActivationStatus(r.Context(), id, r.PathValue("campaignId"), req.Status)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type handlesResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// HandleImportHandles handles POST /api/partner/handles/import.
func (h *PartnerHandler) HandleImportHandles(w http.ResponseWriter, r *http.Request) {
	const op = "api.handles_import"
	body, err := readBody(w, r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.deps.ImportHandles(r.Context(), body)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, handlesResponse{OK: true, Count: n})
}

// HandleHandles handles GET /api/partner/handles.
func (h *PartnerHandler) HandleHandles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(h.deps.Handles(r.Context())))
}
