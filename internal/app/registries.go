package service

import (
	"context"

	"github.com/aimehq/aime/internal/domain/creator"
	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/persona"
	"github.com/aimehq/aime/internal/domain/routing"
	"github.com/aimehq/aime/pkg/logger"
	"github.com/aimehq/aime/pkg/metrics"
)

// MatchPersona routes a signal for a partner.
func (s *Service) MatchPersona(ctx context.Context, partnerID string, sig partner.Signal) (routing.Decision, error) {
	cfg, err := s.partners.Get(ctx, partnerID)
	if err != nil {
		return routing.Decision{}, err
	}
	d := s.router.Route(cfg, sig)
	metrics.RecordRoutingDecision(cfg.PartnerID, d.MatchedBy)
	s.logger.Debug(ctx, "persona routed",
		logger.String("partner", cfg.PartnerID),
		logger.String("persona", d.PersonaID),
		logger.String("matchedBy", d.MatchedBy))
	return d, nil
}

// SimulateSignal pushes a synthetic signal through the network stub. It is
// refused unless the signal network flag is on.
func (s *Service) SimulateSignal(ctx context.Context, req routing.SimulationRequest) (routing.Simulation, error) {
	if !s.signalNetwork {
		return routing.Simulation{}, ErrSignalNetworkOff
	}
	if req.Partner == "" {
		return routing.Simulate(s.router, req, nil), nil
	}
	cfg, err := s.partners.Get(ctx, req.Partner)
	if err != nil {
		return routing.Simulation{}, err
	}
	out := routing.Simulate(s.router, req, &cfg)
	metrics.RecordRoutingDecision(cfg.PartnerID, out.Route.MatchedBy)
	return out, nil
}

// PersonaDefinitions returns the voice catalog.
func (s *Service) PersonaDefinitions(_ context.Context) []persona.Definition {
	return persona.Definitions()
}

// PersonaDefinition returns one voice.
func (s *Service) PersonaDefinition(_ context.Context, key string) (persona.Definition, error) {
	return persona.LookupDefinition(key)
}

// Personas lists the personas of a known partner.
func (s *Service) Personas(ctx context.Context, partnerID string) ([]persona.Persona, error) {
	cfg, err := s.partners.Get(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return s.personas.List(cfg.PartnerID), nil
}

// Persona returns one persona.
func (s *Service) Persona(_ context.Context, id string) (persona.Persona, error) {
	return s.personas.Get(id)
}

// CreatePersona registers a persona. The partner must be loaded.
func (s *Service) CreatePersona(ctx context.Context, p persona.Persona) (persona.Persona, error) {
	if err := s.knownPartner(ctx, p.Partner); err != nil {
		return persona.Persona{}, err
	}
	out, err := s.personas.Create(p)
	if err != nil {
		return persona.Persona{}, err
	}
	s.logger.Info(ctx, "persona created", logger.String("id", out.ID), logger.String("partner", out.Partner))
	return out, nil
}

// PatchPersona applies a merge patch. A partner change must name a loaded
// partner.
func (s *Service) PatchPersona(ctx context.Context, id string, patch []byte) (persona.Persona, error) {
	before, err := s.personas.Get(id)
	if err != nil {
		return persona.Persona{}, err
	}
	out, err := s.personas.Patch(id, patch)
	if err != nil {
		return persona.Persona{}, err
	}
	if out.Partner != before.Partner {
		if err := s.knownPartner(ctx, out.Partner); err != nil {
			if _, restoreErr := s.personas.Replace(before); restoreErr != nil {
				s.logger.Error(ctx, "persona restore failed", logger.String("id", id), logger.Error(restoreErr))
			}
			return persona.Persona{}, err
		}
	}
	return out, nil
}

// DeletePersona removes a persona.
func (s *Service) DeletePersona(ctx context.Context, id string) error {
	if err := s.personas.Delete(id); err != nil {
		return err
	}
	s.logger.Info(ctx, "persona deleted", logger.String("id", id))
	return nil
}

// Creators lists the creators aligned with a known partner.
func (s *Service) Creators(ctx context.Context, partnerID string) ([]creator.Creator, error) {
	cfg, err := s.partners.Get(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return s.creators.List(cfg.PartnerID), nil
}

// Creator returns one creator.
func (s *Service) Creator(_ context.Context, id string) (creator.Creator, error) {
	return s.creators.Get(id)
}

// UpsertCreator registers or replaces a creator. created is true for new ids.
func (s *Service) UpsertCreator(ctx context.Context, c creator.Creator) (creator.Creator, bool, error) {
	if c.PartnerID != "" {
		if err := s.knownPartner(ctx, c.PartnerID); err != nil {
			return creator.Creator{}, false, err
		}
	}
	return s.creators.Upsert(c)
}

// AssignCreator aligns a creator with a partner. Without an explicit
// persona the partner's default persona is used.
func (s *Service) AssignCreator(ctx context.Context, a creator.Assignment) (creator.Creator, error) {
	var defaultPersona string
	if a.Partner != "" {
		cfg, err := s.partners.Get(ctx, a.Partner)
		if err != nil {
			return creator.Creator{}, err
		}
		defaultPersona = cfg.PersonaRouting.DefaultPersonaID
	}
	out, err := s.creators.Assign(a, defaultPersona)
	if err != nil {
		return creator.Creator{}, err
	}
	s.logger.Info(ctx, "creator assigned",
		logger.String("creator", out.ID),
		logger.String("partner", out.PartnerID),
		logger.String("persona", out.DefaultPersona))
	return out, nil
}

func (s *Service) knownPartner(ctx context.Context, id string) error {
	if partner.NormalizeID(id) == "" {
		return nil
	}
	_, err := s.partners.Get(ctx, id)
	return err
}
