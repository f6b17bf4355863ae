// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aimehq/aime/internal/adapters/filestore"
	repository "github.com/aimehq/aime/internal/adapters/repository"
	"github.com/aimehq/aime/internal/config"
	"github.com/aimehq/aime/internal/domain/campaign"
	"github.com/aimehq/aime/internal/domain/creator"
	"github.com/aimehq/aime/internal/domain/persona"
	"github.com/aimehq/aime/internal/domain/routing"
	"github.com/aimehq/aime/internal/domain/snapshot"
	"github.com/aimehq/aime/internal/domain/trend"
	"github.com/aimehq/aime/internal/domain/types"
	"github.com/aimehq/aime/pkg/logger"
)

// Persisted document names inside the data directory.
const (
	campaignsDocument = "campaigns.json"
	handlesDocument   = "handles.json"
)

// Error constants.
var (
	ErrSignalNetworkOff     = types.Tag(types.ErrPrecondition, "signal network disabled in flags")
	ErrDefaultPartnerAbsent = types.Tag(types.ErrNotFound, "default partner not loaded")
)

// Service owns the partner table, registries and persisted documents, and
// implements the API dependencies for the admin backend.
type Service struct {
	mu sync.RWMutex

	// Core components
	partners  *repository.PartnerStore
	router    *routing.RuleRouter
	trends    *trend.Synthesizer
	personas  *persona.Registry
	creators  *creator.Registry
	snapshots *snapshot.Builder
	data      *filestore.Store
	imports   *filestore.Store

	// Configuration
	env                 string
	flags               map[string]bool
	defaultPartner      string
	burstReachThreshold int64
	fixturesDir         string
	importDir           string
	dataDir             string
	signalNetwork       bool
	now                 func() time.Time

	// State
	handles []campaign.Handle
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig applies every service-relevant setting from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		s.env = cfg.Env
		s.flags = cfg.Flags()
		s.signalNetwork = cfg.FeatureSignalNetwork
		s.defaultPartner = cfg.DefaultPartner
		s.burstReachThreshold = cfg.BurstReachThreshold
		s.fixturesDir = cfg.FixturesDir
		s.importDir = cfg.ImportDir
		s.dataDir = cfg.DataDir
	}
}

// WithDataDir sets where campaigns.json and handles.json live.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithImportDir sets where imported partner configs are written.
func WithImportDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.importDir = dir
		}
	}
}

// WithFixturesDir overlays an on-disk fixture directory on the embedded one.
func WithFixturesDir(dir string) Option {
	return func(s *Service) {
		s.fixturesDir = dir
	}
}

// WithDefaultPartner sets the partner served for unknown snapshot requests.
func WithDefaultPartner(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.defaultPartner = id
		}
	}
}

// WithSignalNetwork toggles POST /api/signal/simulate.
func WithSignalNetwork(enabled bool) Option {
	return func(s *Service) {
		s.signalNetwork = enabled
		if s.flags != nil {
			s.flags["FEATURE_SIGNAL_NETWORK"] = enabled
		}
	}
}

// WithClock overrides the time source used for activations and trends.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	defaults := config.New(context.Background())
	s := &Service{
		env:                 defaults.Env,
		flags:               defaults.Flags(),
		defaultPartner:      defaults.DefaultPartner,
		burstReachThreshold: defaults.BurstReachThreshold,
		importDir:           defaults.ImportDir,
		dataDir:             defaults.DataDir,
		now:                 time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates the data and import directories, builds the components,
// loads partner configs and restores loaded handles. It fails when no
// partner config could be loaded.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting admin service...")

	for _, dir := range []string{s.dataDir, s.importDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %w", types.ErrIO, dir, err)
		}
	}

	s.partners = repository.NewPartnerStore(
		repository.WithDirectory("fixtures_dir", s.fixturesDir),
		repository.WithDirectory("import_dir", s.importDir),
		repository.WithLogger(s.logger.Named("partner_store")),
		repository.WithClock(s.now),
	)
	if _, err := s.partners.Load(ctx); err != nil {
		return fmt.Errorf("load partner configs: %w", err)
	}

	s.router = routing.NewRuleRouter(routing.WithBurstReachThreshold(s.burstReachThreshold))
	s.trends = trend.NewSynthesizer(trend.WithClock(s.now))
	s.personas = persona.NewRegistry(
		persona.WithSeed(persona.Seeds()...),
		persona.WithClock(s.now),
		persona.WithLogger(s.logger.Named("persona")),
	)
	s.creators = creator.NewRegistry(
		creator.WithSeed(creator.Seeds()...),
		creator.WithLogger(s.logger.Named("creator")),
	)
	s.snapshots = snapshot.NewBuilder(snapshot.WithPersonas(s.personas), snapshot.WithCreators(s.creators))
	s.data = filestore.New(s.dataDir, filestore.WithLogger(s.logger.Named("filestore")))
	s.imports = filestore.New(s.importDir, filestore.WithLogger(s.logger.Named("filestore")))

	handles, _, err := filestore.Read[[]campaign.Handle](ctx, s.data, handlesDocument)
	if err != nil {
		s.logger.Warn(ctx, "stored handles unreadable; starting empty", logger.Error(err))
		handles = nil
	}
	s.handles = handles

	s.started = true
	s.logger.Info(ctx, "admin service started",
		logger.Any("partners", s.partners.IDs()),
		logger.Int("personas", s.personas.Count()),
		logger.Int("creators", s.creators.Count()),
		logger.Int("handles", len(s.handles)),
	)

	return nil
}

// Stop marks the service stopped. Stores hold no background resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "admin service stopped")
}

// Started reports whether Start has completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Env returns the deployment environment reported by /api/status.
func (s *Service) Env() string { return s.env }

// Flags returns a copy of the feature flags.
func (s *Service) Flags() map[string]bool {
	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// PartnerIDs returns the loaded partner ids in load order.
func (s *Service) PartnerIDs() []string {
	return s.partners.IDs()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"env":     s.env,
	}
	if s.started {
		report := s.partners.Report()
		stats["partners"] = len(report.Loaded)
		stats["skippedFixtures"] = len(report.Skipped)
		stats["personas"] = s.personas.Count()
		stats["creators"] = s.creators.Count()
		stats["handles"] = len(s.handles)
	}
	return stats
}
