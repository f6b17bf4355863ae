package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/snapshot"
	"github.com/aimehq/aime/internal/domain/trend"
	"github.com/aimehq/aime/pkg/metrics"
)

// Trend synthesises a metric series for a known partner.
func (s *Service) Trend(ctx context.Context, partnerID string, metric trend.Metric, r trend.Range) (trend.Series, error) {
	cfg, err := s.partners.Get(ctx, partnerID)
	if err != nil {
		return trend.Series{}, err
	}
	series := s.trends.Build(metric, cfg, r)
	metrics.RecordTrendBuild(string(metric), string(series.Range))
	return series, nil
}

// Snapshot returns the dashboard view of a partner. Unknown or empty
// partner ids fall back to the default partner.
func (s *Service) Snapshot(ctx context.Context, partnerID string) (snapshot.Snapshot, error) {
	cfg, err := s.partners.Get(ctx, partnerID)
	fallback := false
	if errors.Is(err, partner.ErrPartnerNotFound) {
		fallback = partner.NormalizeID(partnerID) != ""
		cfg, err = s.partners.Get(ctx, s.defaultPartner)
		if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrDefaultPartnerAbsent, s.defaultPartner)
		}
	}
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := s.snapshots.Build(cfg)
	snap.Fallback = fallback
	return snap, nil
}

// CampaignPerformance returns the campaign rows of a known partner.
func (s *Service) CampaignPerformance(ctx context.Context, partnerID string) ([]snapshot.Row, error) {
	cfg, err := s.partners.Get(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return s.snapshots.Build(cfg).Campaigns, nil
}

// Logs returns one activity list of the lenient snapshot.
func (s *Service) Logs(ctx context.Context, partnerID string, e snapshot.Entity) ([]snapshot.Row, error) {
	snap, err := s.Snapshot(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return snap.Rows(e), nil
}

// Export renders one entity of the lenient snapshot.
func (s *Service) Export(ctx context.Context, partnerID string, e snapshot.Entity, format snapshot.Format) (snapshot.Export, error) {
	snap, err := s.Snapshot(ctx, partnerID)
	if err != nil {
		return snapshot.Export{}, err
	}
	out, err := snapshot.Render(snap, e, format)
	if err != nil {
		return snapshot.Export{}, err
	}
	if out.Body != nil {
		metrics.RecordExport(string(format), string(e))
	}
	return out, nil
}
