// Package repository holds the partner configuration table. Configs are
// loaded from fixture sources, validated, and published as an immutable
// table behind an atomic pointer so readers never see a partial reload.
package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/pkg/logger"
	"github.com/aimehq/aime/pkg/metrics"
)

// Store provides read access to partner configs and the reload hook.
type Store interface {
	// Get returns the config for id after trimming and lowercasing it.
	// Returns partner.ErrPartnerNotFound if the partner is unknown.
	Get(ctx context.Context, id string) (partner.Config, error)

	// List returns every config in load order.
	List(ctx context.Context) []partner.Config

	// Reload rebuilds the table from all sources and swaps it in.
	Reload(ctx context.Context) (LoadReport, error)

	// Report describes the currently published table.
	Report() LoadReport
}

// SkippedFixture records a document rejected during load.
type SkippedFixture struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// LoadReport summarises one load.
type LoadReport struct {
	Loaded  []string         `json:"loaded"`
	Skipped []SkippedFixture `json:"skipped"`
	At      time.Time        `json:"at"`
}

// table is an immutable snapshot of the partner configs.
type table struct {
	byID   map[string]partner.Config
	order  []string
	report LoadReport
}

// PartnerStore is the file-backed Store. Returned configs share backing
// arrays with the published table and must not be mutated.
type PartnerStore struct {
	sources []Source
	logger  logger.Logger
	now     func() time.Time

	group     singleflight.Group
	requested atomic.Uint64
	current   atomic.Pointer[table]
}

// reloadResult carries a rebuild's outcome and the newest request it covers.
type reloadResult struct {
	covers uint64
	report LoadReport
}

var _ Store = (*PartnerStore)(nil)

// NewPartnerStore creates a store reading the embedded fixtures followed by
// any sources added through options. Call Load before serving.
func NewPartnerStore(opts ...Option) *PartnerStore {
	s := &PartnerStore{
		sources: []Source{EmbeddedSource()},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("partner_store")
	}
	return s
}

// Load performs the initial load. It is Reload under another name so the
// startup path reads naturally.
func (s *PartnerStore) Load(ctx context.Context) (LoadReport, error) {
	return s.Reload(ctx)
}

// Reload rebuilds the table. A call joins a rebuild already in flight only
// when that rebuild started after the call was made; otherwise it waits and
// runs another, so whatever the caller wrote before calling is read. On
// failure the previously published table stays in place.
func (s *PartnerStore) Reload(ctx context.Context) (LoadReport, error) {
	want := s.requested.Add(1)
	for {
		v, err, _ := s.group.Do("reload", func() (any, error) {
			covers := s.requested.Load()
			report, err := s.rebuild(ctx)
			return reloadResult{covers: covers, report: report}, err
		})
		res, _ := v.(reloadResult)
		if res.covers >= want {
			return res.report, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res.report, ctxErr
		}
	}
}

func (s *PartnerStore) rebuild(ctx context.Context) (LoadReport, error) {
	start := time.Now()
	t := &table{byID: make(map[string]partner.Config)}
	t.report.At = s.now().UTC()

	skip := func(source string, err error) {
		t.report.Skipped = append(t.report.Skipped, SkippedFixture{Source: source, Error: err.Error()})
		s.logger.Warn(ctx, "partner fixture skipped", logger.String("fixture", source), logger.Error(err))
	}

	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return t.report, err
		}
		docs, err := src.read()
		if err != nil {
			s.logger.Error(ctx, "fixture source unreadable", logger.String("source", src.Name), logger.Error(err))
			skip(src.Name, fmt.Errorf("%w: %w", ErrSourceFailed, err))
		}
		for _, d := range docs {
			name := src.Name + "/" + d.name
			cfg, err := Decode(d.ext(), d.data)
			if err != nil {
				skip(name, err)
				continue
			}
			if _, exists := t.byID[cfg.PartnerID]; !exists {
				t.order = append(t.order, cfg.PartnerID)
			} else {
				s.logger.Debug(ctx, "partner fixture overridden", logger.String("partner", cfg.PartnerID), logger.String("fixture", name))
			}
			t.byID[cfg.PartnerID] = cfg
		}
	}

	t.report.Loaded = append([]string(nil), t.order...)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if len(t.order) == 0 {
		metrics.RecordConfigReload(false, elapsed, 0, len(t.report.Skipped))
		s.logger.Error(ctx, "partner load produced no configs; keeping previous table",
			logger.Int("skipped", len(t.report.Skipped)))
		return t.report, ErrNoPartners
	}

	s.current.Store(t)
	metrics.RecordConfigReload(true, elapsed, len(t.order), len(t.report.Skipped))
	s.logger.Info(ctx, "partner configs loaded",
		logger.Any("partners", t.report.Loaded),
		logger.Int("skipped", len(t.report.Skipped)),
		logger.Float64("duration_ms", elapsed))
	return t.report, nil
}

// Get returns the config for id.
func (s *PartnerStore) Get(_ context.Context, id string) (partner.Config, error) {
	key := partner.NormalizeID(id)
	t := s.current.Load()
	if t != nil {
		if cfg, ok := t.byID[key]; ok {
			return cfg, nil
		}
	}
	metrics.RecordErrorByComponent("partner_store", "not_found")
	if key == "" {
		return partner.Config{}, fmt.Errorf("%w: empty id", partner.ErrPartnerNotFound)
	}
	return partner.Config{}, fmt.Errorf("%w: %s", partner.ErrPartnerNotFound, key)
}

// List returns every config in load order.
func (s *PartnerStore) List(_ context.Context) []partner.Config {
	t := s.current.Load()
	if t == nil {
		return nil
	}
	out := make([]partner.Config, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// IDs returns the loaded partner ids in load order.
func (s *PartnerStore) IDs() []string {
	t := s.current.Load()
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Report describes the currently published table.
func (s *PartnerStore) Report() LoadReport {
	t := s.current.Load()
	if t == nil {
		return LoadReport{}
	}
	return t.report
}
