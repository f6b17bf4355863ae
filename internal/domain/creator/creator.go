// Package creator keeps the registry of creator accounts that personas
// comment on, and their alignment with partners.
package creator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/text"
	"github.com/aimehq/aime/internal/domain/types"
)

// Error constants.
var (
	ErrCreatorNotFound = types.Tag(types.ErrNotFound, "creator not found")
	ErrInvalidCreator  = types.Tag(types.ErrValidation, "invalid creator")
)

// Platform a creator publishes on.
type Platform string

// Platforms.
const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformOther     Platform = "other"
)

// ParsePlatform accepts the canonical names in any case plus the short
// forms the dashboard uses (IG, TT, YT).
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiktok", "tt":
		return PlatformTikTok, nil
	case "instagram", "ig":
		return PlatformInstagram, nil
	case "youtube", "yt":
		return PlatformYouTube, nil
	case "other":
		return PlatformOther, nil
	case "":
		return "", errors.New("platform is required")
	}
	return "", fmt.Errorf("platform %q is not one of tiktok, instagram, youtube, other", s)
}

// Status of a creator account.
type Status string

// Creator statuses.
const (
	StatusLive   Status = "live"
	StatusDraft  Status = "draft"
	StatusPaused Status = "paused"
)

// Creator is a creator account known to the comment engine.
type Creator struct {
	ID             string   `json:"id"`
	Handle         string   `json:"handle"`
	Name           string   `json:"name,omitempty"`
	Platform       Platform `json:"platform"`
	PartnerID      string   `json:"partnerId,omitempty"`
	DefaultPersona string   `json:"defaultPersona,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	IsTestAccount  bool     `json:"isTestAccount,omitempty"`
	Status         Status   `json:"status,omitempty"`
}

// normalize cleans free text and canonicalises enums. Every problem found
// is reported together.
func (c Creator) normalize() (Creator, error) {
	var errs []error
	c.ID = text.Clean(c.ID)
	c.Handle = text.Clean(c.Handle)
	c.Name = text.Clean(c.Name)
	c.PartnerID = partner.NormalizeID(text.Clean(c.PartnerID))
	c.DefaultPersona = text.Clean(c.DefaultPersona)
	c.Tags = text.CleanAll(c.Tags)

	if c.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if c.Handle == "" {
		errs = append(errs, errors.New("handle is required"))
	}
	p, err := ParsePlatform(string(c.Platform))
	if err != nil {
		errs = append(errs, err)
	}
	c.Platform = p

	switch Status(strings.ToLower(string(c.Status))) {
	case "":
		c.Status = StatusLive
	case StatusLive, StatusDraft, StatusPaused:
		c.Status = Status(strings.ToLower(string(c.Status)))
	default:
		errs = append(errs, fmt.Errorf("status %q is not one of live, draft, paused", c.Status))
	}

	if len(errs) > 0 {
		return Creator{}, fmt.Errorf("%w: %w", ErrInvalidCreator, errors.Join(errs...))
	}
	return c, nil
}

// Assignment aligns a creator with a partner. Handle and Platform are only
// needed when the creator is not registered yet.
type Assignment struct {
	CreatorID string   `json:"creatorId"`
	Partner   string   `json:"partner"`
	PersonaID string   `json:"personaId,omitempty"`
	Handle    string   `json:"handle,omitempty"`
	Platform  Platform `json:"platform,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Seeds returns the creators the service starts with.
func Seeds() []Creator {
	return []Creator{
		{ID: "cr001", Handle: "@maxopolis", Name: "Maxopolis Motivator", Platform: PlatformInstagram, PartnerID: "allmax", Status: StatusLive, Tags: []string{"athlete"}},
		{ID: "cr002", Handle: "@hypertrophyhank", Name: "Hypertrophy Hank", Platform: PlatformTikTok, PartnerID: "allmax", Status: StatusDraft, Tags: []string{"athlete"}},
		{ID: "cr101", Handle: "@dr_rivera", Name: "Dr. Rivera", Platform: PlatformYouTube, PartnerID: "adeeva", Status: StatusLive, Tags: []string{"practitioner"}},
		{ID: "cr102", Handle: "@wellnesswoven", Name: "Wellness Woven", Platform: PlatformInstagram, PartnerID: "adeeva", Status: StatusPaused},
		{ID: "cr201", Handle: "@stemsquad", Name: "STEM Squad", Platform: PlatformYouTube, PartnerID: "gima", Status: StatusLive, Tags: []string{"educator"}},
		{ID: "cr202", Handle: "@campuspulse", Name: "Campus Pulse", Platform: PlatformInstagram, PartnerID: "gima", Status: StatusLive, Tags: []string{"educator"}},
	}
}
