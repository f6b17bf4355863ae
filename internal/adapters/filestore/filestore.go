// Package filestore persists small JSON documents with whole-file
// read-modify-write. Writers to the same path are serialised in process by
// a mutex and across processes by a flock beside the document; each write
// lands through a temp file and rename.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/aimehq/aime/internal/domain/types"
	"github.com/aimehq/aime/pkg/logger"
	"github.com/aimehq/aime/pkg/metrics"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 100 * time.Millisecond
)

// Error constants.
var (
	ErrInvalidName = types.Tag(types.ErrValidation, "invalid document name")
	ErrWrite       = types.Tag(types.ErrIO, "document write failed")
	ErrRead        = types.Tag(types.ErrIO, "document read failed")
	ErrLock        = types.Tag(types.ErrIO, "document lock unavailable")
	ErrCorrupt     = types.Tag(types.ErrParse, "document is not valid JSON")
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLockTimeout bounds how long a writer waits for the file lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store owns a directory of JSON documents.
type Store struct {
	dir         string
	lockTimeout time.Duration
	logger      logger.Logger

	mu    sync.Mutex
	paths map[string]*sync.Mutex
}

// New creates a store rooted at dir. The directory is created on first write.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:         dir,
		lockTimeout: defaultLockTimeout,
		paths:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("filestore")
	}
	return s
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Path resolves a document name inside the root. Names may not contain
// path separators.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *Store) pathMutex(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.paths[path]
	if !ok {
		m = &sync.Mutex{}
		s.paths[path] = m
	}
	return m
}

// lock takes the in-process mutex and then the cross-process flock.
func (s *Store) lock(ctx context.Context, path string) (func(), error) {
	m := s.pathMutex(path)
	m.Lock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		m.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	fl := flock.New(path + ".lock")
	lctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(lctx, lockRetryDelay)
	if err != nil || !locked {
		m.Unlock()
		if err == nil {
			err = errors.New("timeout")
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrLock, filepath.Base(path), err)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn(ctx, "failed to release document lock", logger.String("path", path), logger.Error(err))
		}
		m.Unlock()
	}, nil
}

// ReadRaw returns the document bytes, or nil when it does not exist.
func (s *Store) ReadRaw(_ context.Context, name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return data, nil
}

// WriteRaw replaces the document with data under the path lock.
func (s *Store) WriteRaw(ctx context.Context, name string, data []byte) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	unlock, err := s.lock(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()
	return s.replace(ctx, name, path, data)
}

// replace writes data beside path and renames it into place. The caller
// holds the path lock.
func (s *Store) replace(ctx context.Context, name, path string, data []byte) error {
	start := time.Now()
	err := atomicWrite(path, data)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordPersistenceWrite(strings.TrimSuffix(name, filepath.Ext(name)), err == nil, elapsed)
	if err != nil {
		s.logger.Error(ctx, "document write failed", logger.String("path", path), logger.Error(err))
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// Read decodes the named document into a T. A missing document yields the
// zero T and found=false.
func Read[T any](ctx context.Context, s *Store, name string) (doc T, found bool, err error) {
	data, err := s.ReadRaw(ctx, name)
	if err != nil || data == nil {
		return doc, false, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, true, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
	}
	return doc, true, nil
}

// Update runs a read-modify-write cycle on the named document under its
// lock. fn receives the current value (zero if absent); if it returns an
// error nothing is written. The stored value is returned.
func Update[T any](ctx context.Context, s *Store, name string, fn func(*T) error) (T, error) {
	var doc T
	path, err := s.Path(name)
	if err != nil {
		return doc, err
	}
	unlock, err := s.lock(ctx, path)
	if err != nil {
		return doc, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return doc, fmt.Errorf("%w: %w", ErrRead, err)
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
		}
	}

	if err := fn(&doc); err != nil {
		var zero T
		return zero, err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return doc, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := s.replace(ctx, name, path, append(out, '\n')); err != nil {
		return doc, err
	}
	return doc, nil
}

// Write replaces the named document with v.
func Write(ctx context.Context, s *Store, name string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return s.WriteRaw(ctx, name, append(out, '\n'))
}
