package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aimehq/aime/internal/adapters/filestore"
	repository "github.com/aimehq/aime/internal/adapters/repository"
	"github.com/aimehq/aime/internal/domain/campaign"
	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/pkg/logger"
)

// Partners returns every loaded config in load order.
func (s *Service) Partners(ctx context.Context) []partner.Config {
	return s.partners.List(ctx)
}

// PartnerConfig returns one partner's config.
func (s *Service) PartnerConfig(ctx context.Context, id string) (partner.Config, error) {
	return s.partners.Get(ctx, id)
}

// ReloadPartners re-reads every fixture source.
func (s *Service) ReloadPartners(ctx context.Context) (repository.LoadReport, error) {
	return s.partners.Reload(ctx)
}

// Reload satisfies the watcher's reload hook.
func (s *Service) Reload(ctx context.Context) error {
	_, err := s.partners.Reload(ctx)
	return err
}

// LoadReport describes the published partner table.
func (s *Service) LoadReport(_ context.Context) repository.LoadReport {
	return s.partners.Report()
}

// ImportPartnerConfig validates a config payload, writes it to the import
// directory as <partnerId>.json and reloads. Active reports whether the
// partner is served after the reload.
func (s *Service) ImportPartnerConfig(ctx context.Context, body []byte) (repository.ImportResult, error) {
	cfg, doc, err := repository.PrepareImport(body)
	if err != nil {
		return repository.ImportResult{}, err
	}
	name := cfg.PartnerID + ".json"
	path, err := s.imports.Path(name)
	if err != nil {
		return repository.ImportResult{}, err
	}
	if err := s.imports.WriteRaw(ctx, name, doc); err != nil {
		return repository.ImportResult{}, err
	}
	s.logger.Info(ctx, "partner config imported", logger.String("partner", cfg.PartnerID), logger.String("path", path))

	report, err := s.partners.Reload(ctx)
	if err != nil {
		return repository.ImportResult{}, fmt.Errorf("reload after import: %w", err)
	}
	_, getErr := s.partners.Get(ctx, cfg.PartnerID)
	return repository.ImportResult{
		OK:        true,
		PartnerID: cfg.PartnerID,
		Path:      path,
		Active:    getErr == nil,
		Report:    report,
	}, nil
}

// Activations lists stored activations, filtered by partner when given.
func (s *Service) Activations(ctx context.Context, partnerID string) ([]campaign.Activation, error) {
	doc, _, err := filestore.Read[campaign.Document](ctx, s.data, campaignsDocument)
	if err != nil {
		return nil, err
	}
	return doc.ForPartner(partnerID), nil
}

// Activate records a campaign activation for a known partner.
func (s *Service) Activate(ctx context.Context, req campaign.Request) (campaign.Activation, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return campaign.Activation{}, err
	}
	if _, err := s.partners.Get(ctx, req.Partner); err != nil {
		return campaign.Activation{}, err
	}

	var out campaign.Activation
	_, err := filestore.Update(ctx, s.data, campaignsDocument, func(doc *campaign.Document) error {
		out = doc.Activate(req, uuid.New().String(), s.now().UTC())
		return nil
	})
	if err != nil {
		return campaign.Activation{}, err
	}
	s.logger.Info(ctx, "campaign activated",
		logger.String("partner", out.Partner),
		logger.String("campaign", out.CampaignID),
		logger.Int("handles", len(out.Handles)))
	return out, nil
}

// SetActivationStatus changes the status of a stored activation.
func (s *Service) SetActivationStatus(ctx context.Context, partnerID, campaignID, status string) (campaign.Activation, error) {
	var out campaign.Activation
	_, err := filestore.Update(ctx, s.data, campaignsDocument, func(doc *campaign.Document) error {
		a, err := doc.SetStatus(partnerID, campaignID, status, s.now().UTC())
		out = a
		return err
	})
	if err != nil {
		return campaign.Activation{}, err
	}
	return out, nil
}

// ImportHandles replaces the loaded handle assignments. The in-memory list
// only changes once the document is written.
func (s *Service) ImportHandles(ctx context.Context, body []byte) (int, error) {
	handles, err := campaign.ParseHandles(body)
	if err != nil {
		return 0, err
	}
	if err := filestore.Write(ctx, s.data, handlesDocument, handles); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.handles = handles
	s.mu.Unlock()

	s.logger.Info(ctx, "handles imported", logger.Int("count", len(handles)))
	return len(handles), nil
}

// Handles returns the loaded handle assignments.
func (s *Service) Handles(_ context.Context) []campaign.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]campaign.Handle(nil), s.handles...)
}
