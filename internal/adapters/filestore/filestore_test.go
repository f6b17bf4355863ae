package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimehq/aime/internal/domain/types"
	"github.com/aimehq/aime/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type counter struct {
	Hits  int      `json:"hits"`
	Names []string `json:"names"`
}

func TestUpdate_CreatesAndAccumulates(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "nested", "data"))

	_, found, err := Read[counter](ctx, s, "counter.json")
	require.NoError(t, err)
	assert.False(t, found)

	got, err := Update(ctx, s, "counter.json", func(c *counter) error {
		c.Hits++
		c.Names = append(c.Names, "first")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Hits)

	doc, found, err := Read[counter](ctx, s, "counter.json")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, counter{Hits: 1, Names: []string{"first"}}, doc)
}

func TestUpdate_ConcurrentWritersLoseNothing(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Update(ctx, s, "counter.json", func(c *counter) error {
				c.Hits++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, _, err := Read[counter](ctx, s, "counter.json")
	require.NoError(t, err)
	assert.Equal(t, writers, doc.Hits)
}

func TestUpdate_CallbackErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())
	require.NoError(t, Write(ctx, s, "counter.json", counter{Hits: 7}))

	boom := errors.New("boom")
	_, err := Update(ctx, s, "counter.json", func(c *counter) error {
		c.Hits = 100
		return boom
	})
	require.ErrorIs(t, err, boom)

	doc, _, err := Read[counter](ctx, s, "counter.json")
	require.NoError(t, err)
	assert.Equal(t, 7, doc.Hits)
}

func TestUpdate_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.json"), []byte("{"), 0o600))

	_, err := Update(ctx, s, "counter.json", func(c *counter) error { return nil })
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, types.ErrParse, types.KindOf(err))

	_, found, err := Read[counter](ctx, s, "counter.json")
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestPath_RejectsTraversal(t *testing.T) {
	s := New(t.TempDir())
	for _, name := range []string{"", "..", "../x.json", "a/b.json", `a\b.json`} {
		_, err := s.Path(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	err := s.WriteRaw(context.Background(), "../escape.json", []byte("{}"))
	assert.Equal(t, types.ErrValidation, types.KindOf(err))
}

func TestWriteRaw_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.WriteRaw(ctx, "acme.json", []byte(`{"partnerId":"acme"}`)))
	require.NoError(t, s.WriteRaw(ctx, "acme.json", []byte(`{"partnerId":"acme","name":"Acme"}`)))

	data, err := s.ReadRaw(ctx, "acme.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"partnerId":"acme","name":"Acme"}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"acme.json", "acme.json.lock"}, names)
}

func TestLock_TimesOutWhenHeldElsewhere(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir, WithLockTimeout(250*time.Millisecond))

	other := flock.New(filepath.Join(dir, "counter.json.lock"))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	_, err = Update(ctx, s, "counter.json", func(c *counter) error { return nil })
	require.ErrorIs(t, err, ErrLock)
	assert.Equal(t, types.ErrIO, types.KindOf(err))
}
