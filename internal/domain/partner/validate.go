package partner

import (
	"errors"
	"fmt"
)

// Validate checks the semantic rules the schema cannot express. It expects
// a normalised config.
func (c Config) Validate() error {
	var errs []error
	if c.PartnerID == "" {
		errs = append(errs, errors.New("partnerId is required"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !c.TrafficProfile.Tier.Valid() {
		errs = append(errs, fmt.Errorf("trafficProfile.tier %q is not one of low_volume, mid_volume, high_volume", c.TrafficProfile.Tier))
	}
	l := c.CommentLimits
	if l.MaxDailyComments < 0 || l.MaxCommentsPerUserPerDay < 0 || l.MinSecondsBetweenComments < 0 {
		errs = append(errs, errors.New("commentLimits must be non-negative"))
	}
	if c.PersonaRouting.DefaultPersonaID == "" {
		errs = append(errs, errors.New("personaRouting.defaultPersonaId is required"))
	}
	seen := make(map[string]struct{}, len(c.PersonaRouting.Rules))
	for i, r := range c.PersonaRouting.Rules {
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("personaRouting.rules[%d].id is required", i))
		} else if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("personaRouting.rules[%d].id %q is duplicated", i, r.ID))
		}
		seen[r.ID] = struct{}{}
		if r.PersonaID == "" {
			errs = append(errs, fmt.Errorf("personaRouting.rules[%d].personaId is required", i))
		}
		if r.Match.MinReach != nil && *r.Match.MinReach < 0 {
			errs = append(errs, fmt.Errorf("personaRouting.rules[%d].match.minReach must be >= 0", i))
		}
	}
	a := c.Analytics
	if a.BaselineErrorRate < 0 || a.BaselineErrorRate > 1 {
		errs = append(errs, errors.New("analytics.baselineErrorRate must be a fraction in [0,1]"))
	}
	if a.BaselineSignals < 0 || a.BaselineComments < 0 || a.BaselineLatencyMs < 0 || a.NoiseMultiplier < 0 {
		errs = append(errs, errors.New("analytics baselines must be non-negative"))
	}
	if a.DailyGrowthRate <= -1 {
		errs = append(errs, errors.New("analytics.dailyGrowthRate must be greater than -1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
