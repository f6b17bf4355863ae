package routing

import (
	"strings"

	"github.com/aimehq/aime/internal/domain/partner"
)

// Signal network stub values.
const (
	SimulatedCluster = "demo-cluster"
	DefaultKeyword   = "demo"
)

// SimulationRequest is a synthetic signal pushed through the network stub.
// Partner is optional; when set the signal is routed for that partner.
type SimulationRequest struct {
	Partner string `json:"partner,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	partner.Signal
}

// Simulation is the stub's answer.
type Simulation struct {
	OK            bool      `json:"ok"`
	RoutedCluster string    `json:"routedCluster"`
	Keyword       string    `json:"keyword"`
	Partner       string    `json:"partner,omitempty"`
	Route         *Decision `json:"route,omitempty"`
}

// Simulate answers a simulation request. cfg is nil when the request names
// no partner.
func Simulate(r Router, req SimulationRequest, cfg *partner.Config) Simulation {
	out := Simulation{OK: true, RoutedCluster: SimulatedCluster, Keyword: strings.TrimSpace(req.Keyword)}
	if out.Keyword == "" {
		out.Keyword = DefaultKeyword
	}
	if cfg != nil {
		d := r.Route(*cfg, req.Signal)
		out.Partner = cfg.PartnerID
		out.Route = &d
	}
	return out
}
