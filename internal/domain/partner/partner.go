// Package partner contains the partner configuration model and the routing
// signal that is evaluated against it.
package partner

import "strings"

// Tier classifies a partner's expected traffic.
type Tier string

// Traffic tiers.
const (
	TierLowVolume  Tier = "low_volume"
	TierMidVolume  Tier = "mid_volume"
	TierHighVolume Tier = "high_volume"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierLowVolume, TierMidVolume, TierHighVolume:
		return true
	}
	return false
}

// Config is the full configuration record for one partner. Values are
// treated as immutable once published by the store.
type Config struct {
	PartnerID      string            `json:"partnerId"`
	Version        string            `json:"version"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	Brand          Brand             `json:"brand"`
	Currency       string            `json:"currency"`
	Locales        []string          `json:"locales"`
	CommentLimits  CommentLimits     `json:"commentLimits"`
	TrafficProfile TrafficProfile    `json:"trafficProfile"`
	Funnels        map[string]Funnel `json:"funnels,omitempty"`
	PersonaRouting Routing           `json:"personaRouting"`
	FeatureFlags   FeatureFlags      `json:"featureFlags"`
	Tracking       Tracking          `json:"tracking"`
	Governance     Governance        `json:"governance"`
	Analytics      Analytics         `json:"analytics"`
}

// Brand holds cosmetic colours used by the dashboard.
type Brand struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor,omitempty"`
	LogoVariant    string `json:"logoVariant,omitempty"`
}

// CommentLimits caps comment generation for a partner.
type CommentLimits struct {
	MaxDailyComments          int `json:"maxDailyComments"`
	MaxCommentsPerUserPerDay  int `json:"maxCommentsPerUserPerDay"`
	MinSecondsBetweenComments int `json:"minSecondsBetweenComments"`
}

// TrafficProfile describes expected signal volume.
type TrafficProfile struct {
	Tier                 Tier    `json:"tier"`
	ExpectedDailySignals int     `json:"expectedDailySignals"`
	BurstFactor          float64 `json:"burstFactor"`
	Priority             int     `json:"priority"`
}

// Funnel is a call-to-action funnel a comment may point into.
type Funnel struct {
	Enabled      bool   `json:"enabled"`
	PrimaryCTA   string `json:"primaryCta"`
	SecondaryCTA string `json:"secondaryCta,omitempty"`
	TrackingTag  string `json:"trackingTag"`
}

// Routing holds the persona routing policy.
type Routing struct {
	DefaultPersonaID string   `json:"defaultPersonaId"`
	PriorityPersonas []string `json:"priorityPersonas"`
	Rules            []Rule   `json:"rules"`
}

// Rule maps a match clause to a persona. Rules are evaluated in order.
type Rule struct {
	ID        string `json:"id"`
	Match     Match  `json:"match"`
	PersonaID string `json:"personaId"`
}

// Match is a conjunction of optional constraints. An empty set field or a
// nil MinReach is a wildcard.
type Match struct {
	Audience    []string `json:"audience,omitempty"`
	Platform    []string `json:"platform,omitempty"`
	ContentType []string `json:"contentType,omitempty"`
	MinReach    *int64   `json:"minReach,omitempty"`
}

// IsWildcard reports whether the clause constrains nothing.
func (m Match) IsWildcard() bool {
	return len(m.Audience) == 0 && len(m.Platform) == 0 && len(m.ContentType) == 0 && m.MinReach == nil
}

// FeatureFlags are per-partner toggles.
type FeatureFlags struct {
	AdminOnly                 bool  `json:"adminOnly"`
	EnableMembers             bool  `json:"enableMembers"`
	EnablePartners            bool  `json:"enablePartners"`
	EnablePublicAPI           bool  `json:"enablePublicApi"`
	EnableAutoPublish         bool  `json:"enableAutoPublish"`
	EnableHighVolumeBurstMode *bool `json:"enableHighVolumeBurstMode,omitempty"`
}

// BurstModeAllowed is false only when the flag is explicitly disabled.
func (f FeatureFlags) BurstModeAllowed() bool {
	return f.EnableHighVolumeBurstMode == nil || *f.EnableHighVolumeBurstMode
}

// Tracking holds attribution parameters.
type Tracking struct {
	PartnerCode       string `json:"partnerCode"`
	UTMSource         string `json:"utmSource"`
	UTMMedium         string `json:"utmMedium"`
	UTMCampaignPrefix string `json:"utmCampaignPrefix"`
	AnalyticsBucket   string `json:"analyticsBucket"`
}

// Governance constrains generated content.
type Governance struct {
	RequiresClinicianDisclosure *bool    `json:"requiresClinicianDisclosure,omitempty"`
	MaxMedicalClaimsPerComment  int      `json:"maxMedicalClaimsPerComment"`
	RequiresManualReview        bool     `json:"requiresManualReview"`
	SensitiveTopics             []string `json:"sensitiveTopics"`
}

// Analytics is the baseline used to synthesise trends. BaselineErrorRate is
// a fraction in [0,1].
type Analytics struct {
	BaselineSignals   float64 `json:"baselineSignals"`
	BaselineComments  float64 `json:"baselineComments"`
	BaselineLatencyMs float64 `json:"baselineLatencyMs"`
	BaselineErrorRate float64 `json:"baselineErrorRate"`
	DailyGrowthRate   float64 `json:"dailyGrowthRate"`
	NoiseMultiplier   float64 `json:"noiseMultiplier"`
	ActiveCampaigns   int     `json:"activeCampaigns"`
	ActivePersonas    int     `json:"activePersonas"`
}

// NormalizeID lowercases and trims a partner identifier.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Normalize returns a copy of c with identifiers and match values
// canonicalised. Slices are copied so the result shares nothing with c.
func (c Config) Normalize() Config {
	out := c
	out.PartnerID = NormalizeID(c.PartnerID)
	out.Slug = NormalizeID(c.Slug)
	if out.Slug == "" {
		out.Slug = out.PartnerID
	}
	out.Locales = append([]string(nil), c.Locales...)
	out.PersonaRouting.DefaultPersonaID = strings.TrimSpace(c.PersonaRouting.DefaultPersonaID)
	out.PersonaRouting.PriorityPersonas = trimAll(c.PersonaRouting.PriorityPersonas)
	out.PersonaRouting.Rules = make([]Rule, len(c.PersonaRouting.Rules))
	for i, r := range c.PersonaRouting.Rules {
		nr := Rule{ID: strings.TrimSpace(r.ID), PersonaID: strings.TrimSpace(r.PersonaID)}
		nr.Match.Audience = NormalizeSet(r.Match.Audience)
		nr.Match.Platform = NormalizeSet(r.Match.Platform)
		nr.Match.ContentType = NormalizeSet(r.Match.ContentType)
		if r.Match.MinReach != nil {
			v := *r.Match.MinReach
			nr.Match.MinReach = &v
		}
		out.PersonaRouting.Rules[i] = nr
	}
	out.Governance.SensitiveTopics = NormalizeSet(c.Governance.SensitiveTopics)
	if c.Funnels != nil {
		out.Funnels = make(map[string]Funnel, len(c.Funnels))
		for k, v := range c.Funnels {
			out.Funnels[k] = v
		}
	}
	return out
}

// NormalizeSet lowercases, trims and drops empty values, keeping order and
// removing duplicates. It returns nil for an empty result.
func NormalizeSet(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func trimAll(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
