package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/uuid"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/pkg/logger"
	"github.com/aimehq/aime/pkg/metrics"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithSeed preloads personas. Invalid seeds are skipped with a warning.
func WithSeed(personas ...Persona) Option {
	return func(r *Registry) {
		r.seed = append(r.seed, personas...)
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

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides how ids are minted for personas created without one.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// Registry is the in-memory persona store. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]Persona
	order  []string
	seed   []Persona
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewRegistry builds a Registry and loads any seeds.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byID:  make(map[string]Persona),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("persona")
	}
	for _, p := range r.seed {
		if _, err := r.Create(p); err != nil {
			r.logger.Warn(context.Background(), "persona seed skipped", logger.String("id", p.ID), logger.Error(err))
		}
	}
	r.seed = nil
	return r
}

// List returns the personas of one partner in creation order, or every
// persona when partnerID is empty.
func (r *Registry) List(partnerID string) []Persona {
	partnerID = partner.NormalizeID(partnerID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Persona, 0, len(r.order))
	for _, id := range r.order {
		p := r.byID[id]
		if partnerID == "" || p.Partner == partnerID {
			out = append(out, p)
		}
	}
	return out
}

// Get returns a persona by id.
func (r *Registry) Get(id string) (Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrPersonaNotFound, id)
	}
	return p, nil
}

// Count returns the number of personas.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Create stores a new persona. An empty id is replaced by a generated one;
// a zero CreatedAt is stamped with the registry clock. An id that is already
// registered returns ErrPersonaExists.
func (r *Registry) Create(p Persona) (Persona, error) {
	return r.store(p, false)
}

// Replace stores p, overwriting any persona with the same id.
func (r *Registry) Replace(p Persona) (Persona, error) {
	return r.store(p, true)
}

func (r *Registry) store(p Persona, overwrite bool) (Persona, error) {
	p = p.clean()
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = r.newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}
	if err := p.Validate(); err != nil {
		return Persona{}, err
	}

	r.mu.Lock()
	_, exists := r.byID[p.ID]
	if exists && !overwrite {
		r.mu.Unlock()
		return Persona{}, fmt.Errorf("%w: %q", ErrPersonaExists, p.ID)
	}
	if !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = p
	n := len(r.order)
	r.mu.Unlock()

	metrics.UpdateRegistryRecords("personas", n)
	return p, nil
}

// Patch applies an RFC 7386 merge patch to a persona. The id and creation
// time cannot be changed; the result must still validate.
func (r *Registry) Patch(id string, patch []byte) (Persona, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = strings.TrimSpace(id)
	current, ok := r.byID[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrPersonaNotFound, id)
	}

	original, err := json.Marshal(current)
	if err != nil {
		return Persona{}, fmt.Errorf("encode persona %s: %w", id, err)
	}
	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return Persona{}, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	var next Persona
	if err := json.Unmarshal(merged, &next); err != nil {
		return Persona{}, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}

	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next = next.clean()
	if err := next.Validate(); err != nil {
		return Persona{}, err
	}
	r.byID[id] = next
	return next, nil
}

// Delete removes a persona.
func (r *Registry) Delete(id string) error {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	if _, ok := r.byID[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrPersonaNotFound, id)
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	n := len(r.order)
	r.mu.Unlock()

	metrics.UpdateRegistryRecords("personas", n)
	return nil
}
