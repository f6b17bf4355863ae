// Package trend synthesises deterministic time series from a partner's
// analytics baseline, standing in for real telemetry.
package trend

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/types"
)

// Metric names a synthesised series.
type Metric string

// Supported metrics.
const (
	MetricSignals   Metric = "signals"
	MetricComments  Metric = "comments"
	MetricLatencyMs Metric = "latencyMs"
	MetricErrorRate Metric = "errorRate"
)

// Range names a window of buckets ending now.
type Range string

// Supported ranges.
const (
	Range24h Range = "24h"
	Range7d  Range = "7d"
	Range30d Range = "30d"
)

const (
	oscillationWeight = 0.6
	maxPercent        = 100
)

var ErrUnknownMetric = types.Tag(types.ErrValidation, "unknown metric")

type rangeShape struct {
	points int
	bucket time.Duration
}

var ranges = map[Range]rangeShape{
	Range24h: {points: 24, bucket: time.Hour},
	Range7d:  {points: 28, bucket: 6 * time.Hour},
	Range30d: {points: 30, bucket: 24 * time.Hour},
}

// ParseRange maps a query value to a Range; anything unrecognised is 7d.
func ParseRange(v string) Range {
	r := Range(strings.ToLower(strings.TrimSpace(v)))
	if _, ok := ranges[r]; ok {
		return r
	}
	return Range7d
}

// Buckets returns the point count and bucket width for r.
func (r Range) Buckets() (int, time.Duration) {
	shape, ok := ranges[r]
	if !ok {
		shape = ranges[Range7d]
	}
	return shape.points, shape.bucket
}

// ParseMetric accepts the canonical names case-insensitively.
func ParseMetric(v string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "signals":
		return MetricSignals, nil
	case "comments":
		return MetricComments, nil
	case "latencyms", "latency":
		return MetricLatencyMs, nil
	case "errorrate", "error-rate":
		return MetricErrorRate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, v)
}

// Series is a synthesised trend for one partner and metric.
type Series struct {
	Partner   string        `json:"partner"`
	Metric    Metric        `json:"metric"`
	Range     Range         `json:"range"`
	Current   float64       `json:"current"`
	Trend     []types.Point `json:"trend"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

// Synthesizer builds trends. It holds no mutable state and is safe for
// concurrent use.
type Synthesizer struct {
	now func() time.Time
}

// NewSynthesizer creates a synthesizer with configuration options.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build synthesises metric for cfg over r, ending at the clock's now.
func (s *Synthesizer) Build(metric Metric, cfg partner.Config, r Range) Series {
	return BuildAt(metric, cfg, r, s.now())
}

// BuildAt is Build with an explicit end instant. Identical inputs always
// produce identical output.
func BuildAt(metric Metric, cfg partner.Config, r Range, now time.Time) Series {
	r = ParseRange(string(r))
	n, bucket := r.Buckets()
	end := now.UTC().Truncate(time.Second)

	base := Baseline(metric, cfg.Analytics)
	variance := base * cfg.Analytics.NoiseMultiplier
	bucketDays := bucket.Hours() / 24
	period := math.Max(1, float64(n)/8)
	seed := cfg.PartnerID + "|" + string(metric) + "|" + string(r) + "|"

	points := make([]types.Point, n)
	for i := 0; i < n; i++ {
		back := n - 1 - i
		growth := math.Pow(1+cfg.Analytics.DailyGrowthRate, -float64(back)*bucketDays)
		oscillation := math.Sin(float64(i)/period) * variance * oscillationWeight
		value := base*growth + oscillation + noise(seed, i)*variance
		points[i] = types.Point{
			Timestamp: end.Add(-time.Duration(back) * bucket),
			Value:     finish(metric, value),
		}
	}

	return Series{
		Partner:   cfg.PartnerID,
		Metric:    metric,
		Range:     r,
		Current:   finish(metric, base),
		Trend:     points,
		UpdatedAt: end,
	}
}

// Baseline returns the display-scale baseline for metric. The error rate is
// stored as a fraction and reported as a percentage.
func Baseline(metric Metric, a partner.Analytics) float64 {
	switch metric {
	case MetricSignals:
		return a.BaselineSignals
	case MetricComments:
		return a.BaselineComments
	case MetricLatencyMs:
		return a.BaselineLatencyMs
	case MetricErrorRate:
		return a.BaselineErrorRate * maxPercent
	}
	return 0
}

// noise returns a value in [-0.5, 0.5) derived only from seed and i.
func noise(seed string, i int) float64 {
	h := xxhash.Sum64String(seed + strconv.Itoa(i))
	return float64(h>>11)/float64(1<<53) - 0.5
}

// finish clamps and rounds a raw value for display.
func finish(metric Metric, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Max(0, v)
	if metric == MetricErrorRate {
		return math.Round(math.Min(maxPercent, v)*100) / 100
	}
	return math.Round(v)
}
