// Package routing selects the persona used for generated comments.
package routing

import (
	"github.com/aimehq/aime/internal/domain/partner"
)

// Default routing configuration constants.
const (
	DefaultBurstReachThreshold int64 = 10_000

	MatchedByPriorityOverride = "priority_override"
	MatchedByPriorityPersona  = "priorityPersona"
	MatchedByDefaultPersona   = "defaultPersona"
)

// Decision is the outcome of routing one signal.
type Decision struct {
	PersonaID string `json:"personaId"`
	MatchedBy string `json:"matchedBy"`
	Fallback  bool   `json:"fallback"`
}

// Router maps a signal to a persona for a partner.
type Router interface {
	Route(cfg partner.Config, sig partner.Signal) Decision
}

// Option applies a configuration option to the RuleRouter.
type Option func(*RuleRouter)

// WithBurstReachThreshold sets the reach above which high-volume partners
// bypass rule matching. Negative values are ignored.
func WithBurstReachThreshold(threshold int64) Option {
	return func(r *RuleRouter) {
		if threshold >= 0 {
			r.burstThreshold = threshold
		}
	}
}

// RuleRouter evaluates the precedence: burst override, first matching rule,
// first priority persona, default persona.
type RuleRouter struct {
	burstThreshold int64
}

// NewRuleRouter creates a router with configuration options.
func NewRuleRouter(opts ...Option) *RuleRouter {
	r := &RuleRouter{burstThreshold: DefaultBurstReachThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BurstReachThreshold returns the configured threshold.
func (r *RuleRouter) BurstReachThreshold() int64 { return r.burstThreshold }

// Route implements Router. cfg is expected to be normalised, as published by
// the partner store; sig is normalised here.
func (r *RuleRouter) Route(cfg partner.Config, sig partner.Signal) Decision {
	sig = sig.Normalize()
	rt := cfg.PersonaRouting

	if r.burstOverride(cfg, sig) {
		return Decision{PersonaID: rt.PriorityPersonas[0], MatchedBy: MatchedByPriorityOverride}
	}

	for _, rule := range rt.Rules {
		if Matches(rule.Match, sig) {
			return Decision{PersonaID: rule.PersonaID, MatchedBy: rule.ID}
		}
	}

	if len(rt.PriorityPersonas) > 0 {
		return Decision{PersonaID: rt.PriorityPersonas[0], MatchedBy: MatchedByPriorityPersona, Fallback: true}
	}
	return Decision{PersonaID: rt.DefaultPersonaID, MatchedBy: MatchedByDefaultPersona, Fallback: true}
}

func (r *RuleRouter) burstOverride(cfg partner.Config, sig partner.Signal) bool {
	return cfg.TrafficProfile.Tier == partner.TierHighVolume &&
		cfg.FeatureFlags.BurstModeAllowed() &&
		sig.Reach != nil && *sig.Reach > r.burstThreshold &&
		len(cfg.PersonaRouting.PriorityPersonas) > 0
}

// Matches reports whether every present field of m is satisfied by sig.
// Set fields need a non-empty intersection; MinReach needs reach >= MinReach.
func Matches(m partner.Match, sig partner.Signal) bool {
	if len(m.Audience) > 0 && !intersects(m.Audience, sig.Audience) {
		return false
	}
	if len(m.Platform) > 0 && !intersects(m.Platform, sig.Platform) {
		return false
	}
	if len(m.ContentType) > 0 && !intersects(m.ContentType, sig.ContentType) {
		return false
	}
	if m.MinReach != nil && (sig.Reach == nil || *sig.Reach < *m.MinReach) {
		return false
	}
	return true
}

func intersects(want, have []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
