// Package persona holds the comment voice catalog and the registry of
// deployed personas managed from the admin panel.
package persona

import (
	"errors"
	"fmt"
	"time"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/text"
)

// Tier of a deployed persona.
type Tier string

// Persona tiers.
const (
	TierCreator    Tier = "Creator"
	TierAmbassador Tier = "Ambassador"
	TierPro        Tier = "Pro"
	TierAIAgent    Tier = "AI-Agent"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierCreator, TierAmbassador, TierPro, TierAIAgent:
		return true
	}
	return false
}

// Status of a deployed persona.
type Status string

// Persona statuses.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDraft    Status = "draft"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft:
		return true
	}
	return false
}

// Persona is a voice deployed for one partner. ID matches the persona ids
// used in partner routing rules.
type Persona struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Handle       string     `json:"handle,omitempty"`
	Tier         Tier       `json:"tier"`
	Partner      string     `json:"partner"`
	Bank         string     `json:"bank,omitempty"`
	Language     string     `json:"language,omitempty"`
	Tone         string     `json:"tone,omitempty"`
	Voice        string     `json:"voice,omitempty"`
	Status       Status     `json:"status"`
	LastDeployed *time.Time `json:"lastDeployed,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	Notes        string     `json:"notes,omitempty"`
}

func (p Persona) clean() Persona {
	p.Name = text.Clean(p.Name)
	p.Handle = text.Clean(p.Handle)
	p.Partner = partner.NormalizeID(text.Clean(p.Partner))
	p.Bank = text.Clean(p.Bank)
	p.Language = text.Clean(p.Language)
	p.Tone = text.Clean(p.Tone)
	p.Voice = text.Clean(p.Voice)
	p.Notes = text.Clean(p.Notes)
	if p.Tier == "" {
		p.Tier = TierCreator
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return p
}

// Validate checks a cleaned persona.
func (p Persona) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if p.Partner == "" {
		errs = append(errs, errors.New("partner is required"))
	}
	if !p.Tier.Valid() {
		errs = append(errs, fmt.Errorf("tier %q is not one of Creator, Ambassador, Pro, AI-Agent", p.Tier))
	}
	if !p.Status.Valid() {
		errs = append(errs, fmt.Errorf("status %q is not one of active, inactive, draft", p.Status))
	}
	if p.Voice != "" {
		if _, err := LookupDefinition(p.Voice); err != nil {
			errs = append(errs, fmt.Errorf("voice %q is not a known definition", p.Voice))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPersona, errors.Join(errs...))
	}
	return nil
}

// Seeds returns the personas the service starts with, one or two per
// partner, keyed by the ids the shipped routing rules reference.
func Seeds() []Persona {
	created := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	deployed := time.Date(2025, time.March, 2, 9, 30, 0, 0, time.UTC)
	return []Persona{
		{
			ID: "P-001", Name: "Allmax Coach", Handle: "@allmax_coach", Tier: TierAmbassador,
			Partner: "allmax", Bank: "Allmax-Core", Language: "en", Tone: "motivational",
			Voice: "allmax_motivational", Status: StatusActive, LastDeployed: &deployed, CreatedAt: created,
		},
		{
			ID: "P-002", Name: "Allmax Form Coach", Handle: "@allmax_form", Tier: TierCreator,
			Partner: "allmax", Bank: "Allmax-Core", Language: "en", Tone: "instructional",
			Voice: "allmax_instructional", Status: StatusActive, CreatedAt: created,
		},
		{
			ID: "P-ADE-EDU", Name: "Adeeva Clinician", Handle: "@adeeva_clinic", Tier: TierPro,
			Partner: "adeeva", Bank: "Adeeva-Clinical", Language: "en", Tone: "evidence-based",
			Voice: "adeeva_clinical_educator", Status: StatusInactive, CreatedAt: created,
		},
		{
			ID: "P-GIMA-EDU", Name: "GIMA Tutor", Handle: "@gima_tutor", Tier: TierAIAgent,
			Partner: "gima", Bank: "GIMA-Academy", Language: "en", Tone: "educational",
			Voice: "practitioner_educator", Status: StatusDraft, CreatedAt: created,
			Notes: "Primary GIMA persona for professional education content.",
		},
		{
			ID: "P-GIMA-COACH", Name: "GIMA Mentor", Handle: "@gima_mentor", Tier: TierAIAgent,
			Partner: "gima", Bank: "GIMA-Academy", Language: "en", Tone: "academic",
			Voice: "clinical_insights", Status: StatusDraft, CreatedAt: created,
		},
	}
}
