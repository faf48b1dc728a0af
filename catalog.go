package gramsearch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/gramsearch/blobstore"
	"github.com/hupe1980/gramsearch/internal/cache"
)

// Catalog serves several snapshots from one store, keeping the most
// recently used engines open within a memory budget. Concurrent requests
// for the same snapshot share one load.
//
// Engines evicted from the catalog are closed; searches already running
// on them complete normally.
type Catalog struct {
	store   blobstore.Store
	opts    []Option
	engines *cache.LRU[string, *Engine]
	loads   singleflight.Group
}

// NewCatalog creates a catalog holding at most capacityBytes of loaded
// indexes. opts are applied to every engine it opens.
func NewCatalog(store blobstore.Store, capacityBytes int64, opts ...Option) *Catalog {
	return &Catalog{
		store: store,
		opts:  opts,
		engines: cache.NewLRU(capacityBytes, func(_ string, e *Engine) {
			_ = e.Close()
		}),
	}
}

// Engine returns the engine for snapshot name, loading it on first use.
// A caller whose ctx ends while waiting gets ctx.Err(); the load itself
// continues for the remaining waiters.
func (c *Catalog) Engine(ctx context.Context, name string) (*Engine, error) {
	if e, ok := c.engines.Get(name); ok {
		return e, nil
	}

	// The load is shared, so it must outlive any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(name, func() (any, error) {
		if e, ok := c.engines.Get(name); ok {
			return e, nil
		}
		e, err := Open(loadCtx, c.store, name, c.opts...)
		if err != nil {
			return nil, err
		}
		if !c.engines.Set(name, e, e.SizeInBytes()) {
			_ = e.Close()
			return nil, fmt.Errorf("%w: %s needs %d bytes, catalog holds %d",
				ErrMemoryLimit, name, e.SizeInBytes(), c.engines.Capacity())
		}
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Engine), nil
	}
}

// Search runs query against snapshot name.
func (c *Catalog) Search(ctx context.Context, name, query string) (*Result, error) {
	e, err := c.Engine(ctx, name)
	if err != nil {
		return nil, err
	}
	res, err := e.Search(ctx, query)
	if errors.Is(err, ErrClosed) {
		// Evicted between lookup and search; reload once.
		if e, err = c.Engine(ctx, name); err != nil {
			return nil, err
		}
		return e.Search(ctx, query)
	}
	return res, err
}

// Names lists the snapshots available in the store.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	return c.store.List(ctx, "")
}

// Loaded returns the names of open engines, most recently used first.
func (c *Catalog) Loaded() []string { return c.engines.Keys() }

// Evict closes and drops the engine for name, if loaded.
func (c *Catalog) Evict(name string) bool { return c.engines.Remove(name) }

// Close closes every loaded engine.
func (c *Catalog) Close() error {
	c.engines.Purge()
	return nil
}
