package gramsearch

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gramsearch/blobstore"
)

func seedStore(t *testing.T, names map[string]string) blobstore.Store {
	t.Helper()
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	for name, text := range names {
		e := buildEngine(t, text)
		require.NoError(t, e.Save(ctx, store, name))
	}
	return store
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, map[string]string{
		"chr1.gsix": "AC5G6T5TA",
		"chr2.gsix": "CC5AG6TG5GGA",
	})
	metrics := &BasicMetricsCollector{}
	cat := NewCatalog(store, 1<<30, WithMetricsCollector(metrics))
	defer cat.Close()

	names, err := cat.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1.gsix", "chr2.gsix"}, names)

	res, err := cat.Search(ctx, "chr1.gsix", "GTA")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Count())

	res, err = cat.Search(ctx, "chr2.gsix", "GGGA")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Count())

	// Cached engines are reused.
	_, err = cat.Search(ctx, "chr1.gsix", "TA")
	require.NoError(t, err)
	assert.Equal(t, int64(2), metrics.GetStats().LoadCount)
	assert.Equal(t, []string{"chr1.gsix", "chr2.gsix"}, cat.Loaded())

	_, err = cat.Engine(ctx, "chr3.gsix")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_Eviction(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, map[string]string{
		"a": "AC5G6T5TA",
		"b": "AC5G6T5TA",
	})

	probe, err := Open(ctx, store, "a")
	require.NoError(t, err)
	size := probe.SizeInBytes()
	require.NoError(t, probe.Close())

	// Room for exactly one engine.
	cat := NewCatalog(store, size)
	a, err := cat.Engine(ctx, "a")
	require.NoError(t, err)
	_, err = cat.Engine(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, cat.Loaded())
	_, err = a.Search(ctx, "GTA")
	assert.ErrorIs(t, err, ErrClosed)

	// Searching through the catalog reloads transparently.
	res, err := cat.Search(ctx, "a", "GTA")
	require.NoError(t, err)
	assert.True(t, res.Found())

	assert.True(t, cat.Evict("a"))
	assert.Empty(t, cat.Loaded())
}

func TestCatalog_TooLarge(t *testing.T) {
	store := seedStore(t, map[string]string{"a": "AC5G6T5TA"})
	cat := NewCatalog(store, 1)

	_, err := cat.Engine(context.Background(), "a")
	assert.ErrorIs(t, err, ErrMemoryLimit)
	assert.Empty(t, cat.Loaded())
}

func TestCatalog_ConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, map[string]string{"a": "CC5AG6TG5GGA"})
	metrics := &BasicMetricsCollector{}
	cat := NewCatalog(store, 1<<30, WithMetricsCollector(metrics))
	defer cat.Close()

	var wg sync.WaitGroup
	engines := make([]*Engine, 16)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := cat.Engine(ctx, "a")
			assert.NoError(t, err)
			engines[i] = e
		}(i)
	}
	wg.Wait()

	for _, e := range engines[1:] {
		assert.Same(t, engines[0], e)
	}
	assert.Equal(t, int64(1), metrics.GetStats().LoadCount)
}

// gatedStore blocks Open until release is closed.
type gatedStore struct {
	blobstore.Store
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.Store.Open(ctx, name)
}

func TestCatalog_CanceledWaiterDoesNotFailLoad(t *testing.T) {
	store := &gatedStore{
		Store:   seedStore(t, map[string]string{"a": "AC5G6T5TA"}),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	cat := NewCatalog(store, 1<<30)
	defer cat.Close()

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cat.Engine(firstCtx, "a")
		firstErr <- err
	}()
	<-store.started

	type result struct {
		e   *Engine
		err error
	}
	second := make(chan result, 1)
	go func() {
		e, err := cat.Engine(context.Background(), "a")
		second <- result{e, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(store.release)
	r := <-second
	require.NoError(t, r.err)
	res, err := r.e.Search(context.Background(), "GTA")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Count())
	assert.Equal(t, []string{"a"}, cat.Loaded())
}
