package creator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/text"
	"github.com/aimehq/aime/pkg/logger"
	"github.com/aimehq/aime/pkg/metrics"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithSeed preloads creators. Invalid seeds are skipped with a warning.
func WithSeed(creators ...Creator) Option {
	return func(r *Registry) {
		r.seed = append(r.seed, creators...)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Registry is the in-memory creator store keyed by creator id. It is safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]Creator
	order  []string
	seed   []Creator
	logger logger.Logger
}

// NewRegistry builds a Registry and loads any seeds.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{byID: make(map[string]Creator)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("creator")
	}
	for _, c := range r.seed {
		if _, _, err := r.Upsert(c); err != nil {
			r.logger.Warn(context.Background(), "creator seed skipped", logger.String("id", c.ID), logger.Error(err))
		}
	}
	r.seed = nil
	return r
}

// List returns creators aligned with one partner in registration order,
// or every creator when partnerID is empty.
func (r *Registry) List(partnerID string) []Creator {
	partnerID = partner.NormalizeID(partnerID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Creator, 0, len(r.order))
	for _, id := range r.order {
		c := r.byID[id]
		if partnerID == "" || c.PartnerID == partnerID {
			out = append(out, c)
		}
	}
	return out
}

// Get returns a creator by id.
func (r *Registry) Get(id string) (Creator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return Creator{}, fmt.Errorf("%w: %q", ErrCreatorNotFound, id)
	}
	return c, nil
}

// Count returns the number of creators.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Upsert registers or replaces a creator. created reports whether the id
// was new.
func (r *Registry) Upsert(c Creator) (out Creator, created bool, err error) {
	c, err = c.normalize()
	if err != nil {
		return Creator{}, false, err
	}

	r.mu.Lock()
	created, n := r.put(c)
	r.mu.Unlock()

	metrics.UpdateRegistryRecords("creators", n)
	return c, created, nil
}

// put stores a normalised creator. r.mu must be held.
func (r *Registry) put(c Creator) (created bool, n int) {
	_, exists := r.byID[c.ID]
	if !exists {
		r.order = append(r.order, c.ID)
	}
	r.byID[c.ID] = c
	return !exists, len(r.order)
}

// Assign aligns a creator with a partner and sets its default persona.
// defaultPersona is used when the assignment names none. Unknown creators
// are registered when the assignment carries a handle and platform.
func (r *Registry) Assign(a Assignment, defaultPersona string) (Creator, error) {
	id := text.Clean(a.CreatorID)
	partnerID := partner.NormalizeID(text.Clean(a.Partner))
	var errs []error
	if id == "" {
		errs = append(errs, errors.New("creatorId is required"))
	}
	if partnerID == "" {
		errs = append(errs, errors.New("partner is required"))
	}
	if len(errs) > 0 {
		return Creator{}, fmt.Errorf("%w: %w", ErrInvalidCreator, errors.Join(errs...))
	}

	personaID := text.Clean(a.PersonaID)
	if personaID == "" {
		personaID = defaultPersona
	}

	r.mu.Lock()
	c, exists := r.byID[id]
	if !exists {
		c = Creator{ID: id}
	}
	if a.Handle != "" {
		c.Handle = a.Handle
	}
	if a.Platform != "" {
		c.Platform = a.Platform
	}
	c.PartnerID = partnerID
	c.DefaultPersona = personaID
	c.Tags = slices.Clone(c.Tags)
	for _, tag := range a.Tags {
		if !slices.Contains(c.Tags, tag) {
			c.Tags = append(c.Tags, tag)
		}
	}

	c, err := c.normalize()
	if err != nil {
		r.mu.Unlock()
		return Creator{}, err
	}
	_, n := r.put(c)
	r.mu.Unlock()

	metrics.UpdateRegistryRecords("creators", n)
	return c, nil
}
