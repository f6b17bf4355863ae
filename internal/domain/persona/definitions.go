package persona

import (
	"fmt"
	"strings"
)

// Tone of a persona voice.
type Tone string

// Audience a persona voice is written for.
type Audience string

// Voice tones.
const (
	ToneAcademic      Tone = "academic"
	ToneMotivational  Tone = "motivational"
	ToneInstructional Tone = "instructional"
	ToneNeutral       Tone = "neutral"
)

// Voice audiences.
const (
	AudienceHealthProfessionals Audience = "health_professionals"
	AudienceGeneralFitness      Audience = "general_fitness"
	AudienceMixed               Audience = "mixed"
)

// Definition describes a comment voice that partners reference by key.
type Definition struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Tone        Tone     `json:"tone"`
	Audience    Audience `json:"audience"`
	Notes       string   `json:"notes,omitempty"`
}

var definitions = []Definition{
	{
		Key:         "practitioner_educator",
		Label:       "Practitioner Educator",
		Description: "Explains concepts to clinicians, with a focus on teaching frameworks and structured reasoning.",
		Tone:        ToneAcademic,
		Audience:    AudienceHealthProfessionals,
		Notes:       "Primary GIMA persona for professional education content.",
	},
	{
		Key:         "clinical_insights",
		Label:       "Clinical Insights",
		Description: "Adds value to case-based discussions with pattern recognition, frameworks, and integrative thinking.",
		Tone:        ToneAcademic,
		Audience:    AudienceHealthProfessionals,
		Notes:       "Used for case discussions, assessment findings, and clinical patterns.",
	},
	{
		Key:         "gima_academic_tone",
		Label:       "GIMA Academic Tone",
		Description: "Highly neutral, evidence-aware academic voice suitable for practitioner-only audiences.",
		Tone:        ToneAcademic,
		Audience:    AudienceHealthProfessionals,
		Notes:       "Optimized for symptom-pattern queries and functional frameworks.",
	},
	{
		Key:         "evidence_based_explainer",
		Label:       "Evidence-Based Explainer",
		Description: "Explains mechanisms, frameworks, and options using evidence-based language without making clinical claims.",
		Tone:        ToneAcademic,
		Audience:    AudienceHealthProfessionals,
		Notes:       "Used for guidance-seeking prompts and deeper educational redirection.",
	},
	{
		Key:         "allmax_motivational",
		Label:       "Allmax Motivational",
		Description: "High-energy, gym-focused motivational tone for fitness enthusiasts and athletes.",
		Tone:        ToneMotivational,
		Audience:    AudienceGeneralFitness,
	},
	{
		Key:         "allmax_instructional",
		Label:       "Allmax Instructional",
		Description: "Form and technique guidance, training cues, and practical gym tips.",
		Tone:        ToneInstructional,
		Audience:    AudienceGeneralFitness,
	},
	{
		Key:         "adeeva_clinical_educator",
		Label:       "Adeeva Clinical Educator",
		Description: "Evidence-aware supplement and nutrition education tone for health professionals and serious consumers.",
		Tone:        ToneAcademic,
		Audience:    AudienceMixed,
	},
}

// Definitions returns the voice catalog in its declared order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// LookupDefinition returns the voice registered under key. Keys are matched
// case-insensitively.
func LookupDefinition(key string) (Definition, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, d := range definitions {
		if d.Key == k {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownDefinition, key)
}
