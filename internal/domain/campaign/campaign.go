// Package campaign models campaign activations and creator handle
// assignments persisted by the admin API.
package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/types"
)

// Activation statuses.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

// Error constants.
var (
	ErrActivationNotFound = types.Tag(types.ErrNotFound, "activation not found")
	ErrInvalidActivation  = types.Tag(types.ErrValidation, "invalid activation")
	ErrInvalidHandles     = types.Tag(types.ErrValidation, "invalid handles payload")
)

// ValidStatus reports whether s is a known activation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Handle assigns a creator handle to a campaign and comment cluster.
type Handle struct {
	CreatorHandle   string `json:"creator_handle"`
	CampaignID      string `json:"campaign_id,omitempty"`
	AssignedCluster string `json:"assigned_cluster,omitempty"`
	CommentProfile  string `json:"comment_profile,omitempty"`
	Status          string `json:"status,omitempty"`
}

// Activation is a campaign switched on for a partner.
type Activation struct {
	ID          string    `json:"id"`
	Partner     string    `json:"partner"`
	CampaignID  string    `json:"campaignId"`
	Handles     []Handle  `json:"handles"`
	Status      string    `json:"status"`
	ActivatedAt time.Time `json:"activatedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Campaign is a named campaign known to the admin backend.
type Campaign struct {
	ID        string    `json:"id"`
	Partner   string    `json:"partner"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the on-disk shape of campaigns.json.
type Document struct {
	Campaigns   []Campaign   `json:"campaigns"`
	Activations []Activation `json:"activations"`
}

// Request is the body of an activation call.
type Request struct {
	Partner    string   `json:"partner"`
	CampaignID string   `json:"campaignId"`
	Handles    []Handle `json:"handles"`
}

// Normalize trims the request and fills handle defaults.
func (r Request) Normalize() Request {
	out := Request{
		Partner:    partner.NormalizeID(r.Partner),
		CampaignID: strings.TrimSpace(r.CampaignID),
		Handles:    make([]Handle, 0, len(r.Handles)),
	}
	for _, h := range r.Handles {
		h = h.normalize()
		if h.CampaignID == "" {
			h.CampaignID = out.CampaignID
		}
		out.Handles = append(out.Handles, h)
	}
	return out
}

// Validate checks a normalised request.
func (r Request) Validate() error {
	var errs []error
	if r.Partner == "" {
		errs = append(errs, errors.New("partner is required"))
	}
	if r.CampaignID == "" {
		errs = append(errs, errors.New("campaignId is required"))
	}
	for i, h := range r.Handles {
		if h.CreatorHandle == "" {
			errs = append(errs, fmt.Errorf("handles[%d].creator_handle is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidActivation, errors.Join(errs...))
	}
	return nil
}

func (h Handle) normalize() Handle {
	h.CreatorHandle = strings.TrimSpace(h.CreatorHandle)
	h.CampaignID = strings.TrimSpace(h.CampaignID)
	h.AssignedCluster = strings.TrimSpace(h.AssignedCluster)
	h.CommentProfile = strings.TrimSpace(h.CommentProfile)
	h.Status = strings.TrimSpace(h.Status)
	if h.Status == "" {
		h.Status = StatusActive
	}
	return h
}

// Activate records a new activation, replacing any previous activation of
// the same partner and campaign. The campaign is registered if unknown.
func (d *Document) Activate(req Request, id string, now time.Time) Activation {
	a := Activation{
		ID:          id,
		Partner:     req.Partner,
		CampaignID:  req.CampaignID,
		Handles:     req.Handles,
		Status:      StatusActive,
		ActivatedAt: now,
		UpdatedAt:   now,
	}
	kept := d.Activations[:0]
	for _, existing := range d.Activations {
		if existing.Partner == a.Partner && existing.CampaignID == a.CampaignID {
			continue
		}
		kept = append(kept, existing)
	}
	d.Activations = append(kept, a)

	for _, c := range d.Campaigns {
		if c.Partner == a.Partner && c.ID == a.CampaignID {
			return a
		}
	}
	d.Campaigns = append(d.Campaigns, Campaign{ID: a.CampaignID, Partner: a.Partner, CreatedAt: now})
	return a
}

// SetStatus updates the status of an existing activation.
func (d *Document) SetStatus(partnerID, campaignID, status string, now time.Time) (Activation, error) {
	if !ValidStatus(status) {
		return Activation{}, fmt.Errorf("%w: status %q is not one of active, paused, completed", ErrInvalidActivation, status)
	}
	partnerID = partner.NormalizeID(partnerID)
	for i := range d.Activations {
		a := &d.Activations[i]
		if a.Partner == partnerID && a.CampaignID == campaignID {
			a.Status = status
			a.UpdatedAt = now
			return *a, nil
		}
	}
	return Activation{}, fmt.Errorf("%w: %s/%s", ErrActivationNotFound, partnerID, campaignID)
}

// ForPartner returns the activations of one partner, or all of them when
// partnerID is empty.
func (d Document) ForPartner(partnerID string) []Activation {
	partnerID = partner.NormalizeID(partnerID)
	out := make([]Activation, 0, len(d.Activations))
	for _, a := range d.Activations {
		if partnerID == "" || a.Partner == partnerID {
			out = append(out, a)
		}
	}
	return out
}

// ParseHandles accepts either a bare array of handles or {"handles": [...]}.
// An empty list is rejected.
func ParseHandles(data []byte) ([]Handle, error) {
	trimmed := strings.TrimSpace(string(data))
	var handles []Handle
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(data, &handles); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHandles, err)
		}
	case strings.HasPrefix(trimmed, "{"):
		var wrapper struct {
			Handles []Handle `json:"handles"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHandles, err)
		}
		handles = wrapper.Handles
	default:
		return nil, fmt.Errorf("%w: expected an array or an object with handles", ErrInvalidHandles)
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("%w: no handles provided", ErrInvalidHandles)
	}
	for i := range handles {
		handles[i] = handles[i].normalize()
		if handles[i].CreatorHandle == "" {
			return nil, fmt.Errorf("%w: handles[%d].creator_handle is required", ErrInvalidHandles, i)
		}
	}
	return handles, nil
}
