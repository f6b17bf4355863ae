package repository

import (
	"time"

	"github.com/aimehq/aime/pkg/logger"
)

// Option applies a configuration option to the PartnerStore.
type Option func(*PartnerStore)

// WithSources replaces the fixture sources. Later sources override earlier
// ones by partner id.
func WithSources(sources ...Source) Option {
	return func(s *PartnerStore) {
		s.sources = append([]Source(nil), sources...)
	}
}

// WithDirectory appends an on-disk source. An empty path is ignored.
func WithDirectory(name, path string) Option {
	return func(s *PartnerStore) {
		if path != "" {
			s.sources = append(s.sources, DirSource(name, path))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *PartnerStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time stamped on load reports.
func WithClock(now func() time.Time) Option {
	return func(s *PartnerStore) {
		if now != nil {
			s.now = now
		}
	}
}
