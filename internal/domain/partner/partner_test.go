package partner_test

import (
	"errors"
	"testing"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func validConfig() partner.Config {
	return partner.Config{
		PartnerID:      " GIMA ",
		Name:           "Global Integrative Medicine Academy",
		TrafficProfile: partner.TrafficProfile{Tier: partner.TierHighVolume},
		PersonaRouting: partner.Routing{
			DefaultPersonaID: "P-GIMA-EDU",
			PriorityPersonas: []string{" P-GIMA-EDU", "", "P-002"},
			Rules: []partner.Rule{{
				ID:        "gima_pro_clinicians",
				Match:     partner.Match{Audience: []string{"Clinician", " nurse", "clinician"}},
				PersonaID: "P-GIMA-EDU",
			}},
		},
		Analytics: partner.Analytics{BaselineErrorRate: 0.011},
	}
}

func TestConfig_Normalize(t *testing.T) {
	Convey("Given a config with untidy identifiers", t, func() {
		raw := validConfig()

		Convey("When it is normalised", func() {
			cfg := raw.Normalize()

			Convey("Then the partner id is lowercased and trimmed", func() {
				So(cfg.PartnerID, ShouldEqual, "gima")
				So(cfg.Slug, ShouldEqual, "gima")
			})

			Convey("And match sets are canonical and deduplicated", func() {
				So(cfg.PersonaRouting.Rules[0].Match.Audience, ShouldResemble, []string{"clinician", "nurse"})
			})

			Convey("And priority personas keep their case but lose blanks", func() {
				So(cfg.PersonaRouting.PriorityPersonas, ShouldResemble, []string{"P-GIMA-EDU", "P-002"})
			})

			Convey("And the original is left untouched", func() {
				So(raw.PersonaRouting.Rules[0].Match.Audience[0], ShouldEqual, "Clinician")
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	Convey("Given a normalised config", t, func() {
		cfg := validConfig().Normalize()

		Convey("Then a complete config passes", func() {
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("When the default persona is missing", func() {
			cfg.PersonaRouting.DefaultPersonaID = ""
			err := cfg.Validate()

			Convey("Then it fails as a validation error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, partner.ErrInvalidConfig), ShouldBeTrue)
				So(errors.Is(err, types.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "defaultPersonaId")
			})
		})

		Convey("When the tier is unknown", func() {
			cfg.TrafficProfile.Tier = "enormous"
			So(cfg.Validate().Error(), ShouldContainSubstring, "trafficProfile.tier")
		})

		Convey("When rule ids repeat", func() {
			cfg.PersonaRouting.Rules = append(cfg.PersonaRouting.Rules, cfg.PersonaRouting.Rules[0])
			So(cfg.Validate().Error(), ShouldContainSubstring, "duplicated")
		})

		Convey("When the error rate baseline looks like a percentage", func() {
			cfg.Analytics.BaselineErrorRate = 1.1
			So(cfg.Validate().Error(), ShouldContainSubstring, "baselineErrorRate")
		})

		Convey("When the growth rate would collapse the series", func() {
			cfg.Analytics.DailyGrowthRate = -1
			So(cfg.Validate().Error(), ShouldContainSubstring, "dailyGrowthRate")
			cfg.Analytics.DailyGrowthRate = -2
			So(cfg.Validate().Error(), ShouldContainSubstring, "dailyGrowthRate")
			cfg.Analytics.DailyGrowthRate = -0.5
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("When limits are negative", func() {
			cfg.CommentLimits.MaxDailyComments = -1
			So(cfg.Validate().Error(), ShouldContainSubstring, "commentLimits")
		})
	})
}

func TestParseSignal(t *testing.T) {
	Convey("Given raw query values", t, func() {
		Convey("When all fields are present", func() {
			s, err := partner.ParseSignal("Clinician, nurse", "instagram", "", "5000")

			Convey("Then sets are split and normalised", func() {
				So(err, ShouldBeNil)
				So(s.Audience, ShouldResemble, []string{"clinician", "nurse"})
				So(s.Platform, ShouldResemble, []string{"instagram"})
				So(s.ContentType, ShouldBeNil)
				So(*s.Reach, ShouldEqual, 5000)
			})
		})

		Convey("When reach is absent", func() {
			s, err := partner.ParseSignal("", "", "", " ")
			So(err, ShouldBeNil)
			So(s.Reach, ShouldBeNil)
		})

		Convey("When reach is not a number", func() {
			_, err := partner.ParseSignal("", "", "", "lots")
			So(errors.Is(err, types.ErrValidation), ShouldBeTrue)
		})

		Convey("When reach is negative", func() {
			_, err := partner.ParseSignal("", "", "", "-4")
			So(errors.Is(err, partner.ErrInvalidSignal), ShouldBeTrue)
		})
	})
}

func TestFeatureFlags_BurstModeAllowed(t *testing.T) {
	Convey("Given burst mode flags", t, func() {
		on, off := true, false
		So(partner.FeatureFlags{}.BurstModeAllowed(), ShouldBeTrue)
		So(partner.FeatureFlags{EnableHighVolumeBurstMode: &on}.BurstModeAllowed(), ShouldBeTrue)
		So(partner.FeatureFlags{EnableHighVolumeBurstMode: &off}.BurstModeAllowed(), ShouldBeFalse)
	})
}
