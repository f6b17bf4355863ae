package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aimehq/aime/internal/domain/routing"
)

// SignalDependencies defines the signal network stub.
type SignalDependencies interface {
	SimulateSignal(ctx context.Context, req routing.SimulationRequest) (routing.Simulation, error)
}

// SignalHandler handles signal network requests.
type SignalHandler struct {
	deps SignalDependencies
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler(deps SignalDependencies) *SignalHandler {
	return &SignalHandler{deps: deps}
}

// HandleSimulate handles POST /api/signal/simulate. An empty body is a
// request with defaults.
func (h *SignalHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.signal_simulate"
	body, err := readBody(w, r, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req routing.SimulationRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, r, WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	out, err := h.deps.SimulateSignal(r.Context(), req)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
