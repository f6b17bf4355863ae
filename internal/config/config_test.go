package config_test

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/aimehq/aime/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":4000")
			convey.So(cfg.DefaultPartner, convey.ShouldEqual, "allmax")
			convey.So(cfg.BurstReachThreshold, convey.ShouldEqual, 10_000)
			convey.So(cfg.DataDir, convey.ShouldEqual, "data")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Load(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("AIME_ADDR", ":8088")
		t.Setenv("AIME_BURST_REACH_THRESHOLD", "2500")
		t.Setenv("AIME_FEATURE_SIGNAL_NETWORK", "true")

		cfg, err := config.Load(context.Background())

		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":8088")
		convey.So(cfg.BurstReachThreshold, convey.ShouldEqual, 2500)
		convey.So(cfg.FeatureSignalNetwork, convey.ShouldBeTrue)
		convey.So(cfg.Flags()["FEATURE_SIGNAL_NETWORK"], convey.ShouldBeTrue)
		convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
	})
}

func TestConfig_Metrics(t *testing.T) {
	convey.Convey("Given metrics overrides in the environment", t, func() {
		t.Setenv("AIME_METRICS_NAMESPACE", "aime_stage")
		t.Setenv("AIME_METRICS_LATENCY_BUCKETS", "5,25,100")
		t.Setenv("AIME_METRICS_ENABLED", "false")

		cfg, err := config.Load(context.Background())

		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "aime_stage")
		convey.So(cfg.MetricsLatencyBuckets, convey.ShouldResemble, []float64{5, 25, 100})
		convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
		convey.So(cfg.MetricsRefreshMS, convey.ShouldEqual, 10_000)
	})

	convey.Convey("Given latency buckets out of order", t, func() {
		cfg := config.New(context.Background())
		cfg.MetricsLatencyBuckets = []float64{10, 10, 50}

		convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "metrics_latency_buckets")
	})
}
