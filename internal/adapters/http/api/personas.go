package api

import (
	"context"
	"net/http"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/persona"
	"github.com/aimehq/aime/internal/domain/routing"
)

// PersonaDependencies defines the routing, catalog and registry operations.
type PersonaDependencies interface {
	MatchPersona(ctx context.Context, partnerID string, sig partner.Signal) (routing.Decision, error)
	PersonaDefinitions(ctx context.Context) []persona.Definition
	PersonaDefinition(ctx context.Context, key string) (persona.Definition, error)
	Personas(ctx context.Context, partnerID string) ([]persona.Persona, error)
	Persona(ctx context.Context, id string) (persona.Persona, error)
	CreatePersona(ctx context.Context, p persona.Persona) (persona.Persona, error)
	PatchPersona(ctx context.Context, id string, patch []byte) (persona.Persona, error)
	DeletePersona(ctx context.Context, id string) error
}

// PersonaHandler handles persona requests.
type PersonaHandler struct {
	deps PersonaDependencies
}

// NewPersonaHandler creates a new persona handler.
func NewPersonaHandler(deps PersonaDependencies) *PersonaHandler {
	return &PersonaHandler{deps: deps}
}

// HandleMatch handles GET /api/persona/match. Set parameters take comma
// separated values.
func (h *PersonaHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.persona_match"
	id, err := requirePartner(r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	sig, err := partner.ParseSignal(q.Get("audience"), q.Get("platform"), q.Get("contentType"), q.Get("reach"))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	d, err := h.deps.MatchPersona(r.Context(), id, sig)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleDefinitions handles GET /api/persona/definitions.
func (h *PersonaHandler) HandleDefinitions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.PersonaDefinitions(r.Context()))
}

// HandleDefinition handles GET /api/persona/definitions/{key}.
func (h *PersonaHandler) HandleDefinition(w http.ResponseWriter, r *http.Request) {
	const op = "api.persona_definition"
	d, err := h.deps.PersonaDefinition(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleList handles GET /api/persona/list?partner=ID.
func (h *PersonaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.persona_list"
	id, err := requirePartner(r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.deps.Personas(r.Context(), id)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// HandleGet handles GET /api/persona/{id}.
func (h *PersonaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.persona_get"
	p, err := h.deps.Persona(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleCreate handles POST /api/persona. An id already registered is a
// 400; updates go through PATCH.
func (h *PersonaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.persona_create"
	var in persona.Persona
	if err := decodeJSON(w, r, op, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.deps.CreatePersona(r.Context(), in)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandlePatch handles PATCH /api/persona/{id} with a JSON merge patch body.
func (h *PersonaHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.persona_patch"
	body, err := readBody(w, r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.deps.PatchPersona(r.Context(), r.PathValue("id"), body)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /api/persona/{id}.
func (h *PersonaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.persona_delete"
	id := r.PathValue("id")
	if err := h.deps.DeletePersona(r.Context(), id); err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, ID: id})
}
