package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums every sample of the named family in the global registry.
func counterValue(name string, labels map[string]string) float64 {
	families, err := GetRegistry().Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	sample:
		for _, m := range f.GetMetric() {
			have := map[string]string{}
			for _, lp := range m.GetLabel() {
				have[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if have[k] != v {
					continue sample
				}
			}
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)

				manager.fixturesSkipped.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_admin_fixtures_skipped_total")
			})
		})

		Convey("When passing zero values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(-1*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "aime")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsInit(t *testing.T) {
	Convey("Given the global manager rebuilt from options", t, func() {
		Init(WithNamespace("custom"), WithHistogramBuckets([]float64{5, 50, 500}), WithMetricsEnabled(true))
		defer Init()

		RecordConfigReload(true, 12, 2, 0)
		RecordHTTPRequestDuration("health", "GET", "200", 30)

		Convey("Then the served registry uses the new namespace and buckets", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var names []string
			var buckets int
			for _, f := range families {
				names = append(names, f.GetName())
				if f.GetName() == "custom_admin_http_request_duration_milliseconds" {
					buckets = len(f.GetMetric()[0].GetHistogram().GetBucket())
				}
			}
			So(names, ShouldContain, "custom_admin_partners_loaded")
			So(names, ShouldNotContain, "aime_admin_partners_loaded")
			So(buckets, ShouldEqual, 3)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Routing decisions are counted per partner and clause", func() {
			labels := map[string]string{"partner": "gima", "matched_by": "gima_pro_clinicians"}
			before := counterValue("aime_admin_routing_decisions_total", labels)
			RecordRoutingDecision("gima", "gima_pro_clinicians")
			RecordRoutingDecision("gima", "gima_pro_clinicians")
			So(counterValue("aime_admin_routing_decisions_total", labels), ShouldEqual, before+2)
		})

		Convey("A successful reload publishes the partner gauge", func() {
			RecordConfigReload(true, 3.5, 3, 1)
			So(counterValue("aime_admin_partners_loaded", nil), ShouldEqual, 3)

			before := counterValue("aime_admin_config_reloads_total", map[string]string{"result": "failure"})
			RecordConfigReload(false, 1, 0, 2)
			So(counterValue("aime_admin_config_reloads_total", map[string]string{"result": "failure"}), ShouldEqual, before+1)
			So(counterValue("aime_admin_partners_loaded", nil), ShouldEqual, 3)
		})

		Convey("Other recorders do not panic", func() {
			So(func() {
				RecordHTTPRequest("/api/health", "GET", "200")
				RecordHTTPRequestDuration("/api/health", "GET", "200", 1.2)
				RecordTrendBuild("signals", "24h")
				RecordExport("csv", "signals")
				UpdateRegistryRecords("personas", 12)
				RecordPersistenceWrite("campaigns", true, 0.8)
				RecordPersistenceWrite("campaigns", false, 2)
				RecordErrorByComponent("repository", "not_found")
				RecordErrorByEndpoint("/api/persona/match", "GET", "400")
				CollectSystem()
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		labels := map[string]string{"format": "xlsx", "entity": "logs"}
		before := counterValue("aime_admin_exports_total", labels)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				RecordExport("xlsx", "logs")
			}()
		}
		wg.Wait()

		So(counterValue("aime_admin_exports_total", labels), ShouldEqual, before+20)
	})
}

func TestRunSystemCollector(t *testing.T) {
	Convey("The collector stops with its context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- RunSystemCollector(ctx) }()
		cancel()

		select {
		case err := <-done:
			So(err, ShouldBeNil)
		case <-time.After(2 * time.Second):
			So("collector did not stop", ShouldBeEmpty)
		}
		So(counterValue("aime_admin_system_goroutine_count", nil), ShouldBeGreaterThan, 0)
	})
}
