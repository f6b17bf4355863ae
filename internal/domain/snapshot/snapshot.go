// Package snapshot assembles a partner's dashboard view and exports any of
// its lists as CSV or XLSX.
package snapshot

import (
	"math"
	"strings"

	"github.com/aimehq/aime/internal/domain/creator"
	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/persona"
	"github.com/aimehq/aime/internal/domain/trend"
)

// Entity names an exportable snapshot list.
type Entity string

// Exportable entities.
const (
	EntitySignals   Entity = "signals"
	EntityComments  Entity = "comment-engine"
	EntityPersonas  Entity = "personas"
	EntityCreators  Entity = "creators"
	EntityCampaigns Entity = "campaigns"
	EntityLogs      Entity = "logs"
)

// ParseEntity maps a query value to an Entity. "comments" is accepted for
// the comment engine list; anything unknown is signals.
func ParseEntity(v string) Entity {
	switch e := Entity(strings.ToLower(strings.TrimSpace(v))); e {
	case EntitySignals, EntityComments, EntityPersonas, EntityCreators, EntityCampaigns, EntityLogs:
		return e
	case "comments":
		return EntityComments
	}
	return EntitySignals
}

// Metrics are the headline numbers of a snapshot. ErrorRate is a percentage.
type Metrics struct {
	Signals         float64 `json:"signals"`
	Comments        float64 `json:"comments"`
	LatencyMs       float64 `json:"latencyMs"`
	ErrorRate       float64 `json:"errorRate"`
	ActiveCampaigns int     `json:"activeCampaigns"`
	ActivePersonas  int     `json:"activePersonas"`
}

// Snapshot is the dashboard view of one partner.
type Snapshot struct {
	Partner   string  `json:"partner"`
	Name      string  `json:"name"`
	Fallback  bool    `json:"fallback,omitempty"`
	Metrics   Metrics `json:"metrics"`
	Signals   []Row   `json:"signals"`
	Comments  []Row   `json:"comments"`
	Personas  []Row   `json:"personas"`
	Creators  []Row   `json:"creators"`
	Campaigns []Row   `json:"campaigns"`
	Logs      []Row   `json:"logs"`
}

// Rows returns the list named by e.
func (s Snapshot) Rows(e Entity) []Row {
	switch e {
	case EntityComments:
		return s.Comments
	case EntityPersonas:
		return s.Personas
	case EntityCreators:
		return s.Creators
	case EntityCampaigns:
		return s.Campaigns
	case EntityLogs:
		return s.Logs
	default:
		return s.Signals
	}
}

// PersonaLister lists personas by partner.
type PersonaLister interface {
	List(partnerID string) []persona.Persona
}

// CreatorLister lists creators by partner.
type CreatorLister interface {
	List(partnerID string) []creator.Creator
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithPersonas sets the persona source.
func WithPersonas(p PersonaLister) Option {
	return func(b *Builder) { b.personas = p }
}

// WithCreators sets the creator source.
func WithCreators(c CreatorLister) Option {
	return func(b *Builder) { b.creators = c }
}

// Builder assembles snapshots from static activity data and the live
// registries.
type Builder struct {
	personas PersonaLister
	creators CreatorLister
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the snapshot of cfg's partner. Partners without recorded
// activity get empty activity lists.
func (b *Builder) Build(cfg partner.Config) Snapshot {
	id := partner.NormalizeID(cfg.PartnerID)
	act := activity[id]
	s := Snapshot{
		Partner:   id,
		Name:      cfg.Name,
		Metrics:   metricsFor(cfg.Analytics),
		Signals:   nonNil(act.signals),
		Comments:  nonNil(act.comments),
		Campaigns: nonNil(act.campaigns),
		Logs:      nonNil(act.logs),
		Personas:  []Row{},
		Creators:  []Row{},
	}
	if b.personas != nil {
		for _, p := range b.personas.List(id) {
			s.Personas = append(s.Personas, R(
				"id", p.ID, "name", p.Name, "handle", p.Handle, "tier", string(p.Tier),
				"status", string(p.Status), "voice", p.Voice,
			))
		}
	}
	if b.creators != nil {
		for _, c := range b.creators.List(id) {
			s.Creators = append(s.Creators, R(
				"id", c.ID, "name", c.Name, "handle", c.Handle, "platform", string(c.Platform),
				"status", string(c.Status), "defaultPersona", c.DefaultPersona,
			))
		}
	}
	return s
}

func metricsFor(a partner.Analytics) Metrics {
	return Metrics{
		Signals:         math.Round(trend.Baseline(trend.MetricSignals, a)),
		Comments:        math.Round(trend.Baseline(trend.MetricComments, a)),
		LatencyMs:       math.Round(trend.Baseline(trend.MetricLatencyMs, a)),
		ErrorRate:       math.Round(trend.Baseline(trend.MetricErrorRate, a)*100) / 100,
		ActiveCampaigns: a.ActiveCampaigns,
		ActivePersonas:  a.ActivePersonas,
	}
}

func nonNil(rows []Row) []Row {
	if rows == nil {
		return []Row{}
	}
	return append([]Row(nil), rows...)
}
