package api

import (
	"context"
	"net/http"

	"github.com/aimehq/aime/internal/domain/creator"
)

// CreatorDependencies defines the creator registry operations.
type CreatorDependencies interface {
	Creators(ctx context.Context, partnerID string) ([]creator.Creator, error)
	Creator(ctx context.Context, id string) (creator.Creator, error)
	UpsertCreator(ctx context.Context, c creator.Creator) (creator.Creator, bool, error)
	AssignCreator(ctx context.Context, a creator.Assignment) (creator.Creator, error)
}

// CreatorHandler handles creator requests.
type CreatorHandler struct {
	deps CreatorDependencies
}

// NewCreatorHandler creates a new creator handler.
func NewCreatorHandler(deps CreatorDependencies) *CreatorHandler {
	return &CreatorHandler{deps: deps}
}

// HandleList handles GET /api/creator/list?partner=ID.
func (h *CreatorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.creator_list"
	id, err := requirePartner(r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.deps.Creators(r.Context(), id)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// HandleGet handles GET /api/creator/{id}.
func (h *CreatorHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.creator_get"
	c, err := h.deps.Creator(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleUpsert handles POST /api/creator. New ids answer 201.
func (h *CreatorHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	const op = "api.creator_upsert"
	var in creator.Creator
	if err := decodeJSON(w, r, op, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, created, err := h.deps.UpsertCreator(r.Context(), in)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, c)
}

// HandleAssign handles POST /api/creator/assign.
func (h *CreatorHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.creator_assign"
	var in creator.Assignment
	if err := decodeJSON(w, r, op, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.deps.AssignCreator(r.Context(), in)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}
