package gramsearch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/gramsearch/blobstore"
	"github.com/hupe1980/gramsearch/fmindex"
	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/rank"
	"github.com/hupe1980/gramsearch/resource"
	"github.com/hupe1980/gramsearch/search"
)

const tracerName = "github.com/hupe1980/gramsearch"

var (
	tracerOnce sync.Once
	tracer     trace.Tracer
)

// getTracer returns the global OpenTelemetry tracer, resolved on first use
// so a provider installed after package init is still picked up.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		tracer = otel.Tracer(tracerName)
	})
	return tracer
}

// Engine answers queries against one indexed PRG. It is safe for
// concurrent use.
type Engine struct {
	idx      *fmindex.Index
	ranks    *rank.Cache
	searcher *search.Searcher
	opts     options
	reserved int64
	closed   atomic.Bool
}

// New wraps an already built index. When a resource controller with a
// memory limit is configured and the index does not fit, New fails with
// ErrMemoryLimit instead of waiting.
func New(idx *fmindex.Index, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	ranks := rank.New(idx, rank.WithStride(o.rankStride))
	size := int64(idx.SizeInBytes() + ranks.SizeInBytes())
	if !o.controller.TryAcquireMemory(size) {
		return nil, fmt.Errorf("%w: index needs %d bytes", ErrMemoryLimit, size)
	}
	return newEngine(idx, ranks, size, o), nil
}

func newEngine(idx *fmindex.Index, ranks *rank.Cache, reserved int64, o options) *Engine {
	return &Engine{
		idx:   idx,
		ranks: ranks,
		searcher: search.NewSearcher(idx, ranks, search.Config{
			Workers:     o.workers,
			MaxFrontier: o.maxFrontier,
		}),
		opts:     o,
		reserved: reserved,
	}
}

// acquire builds the rank cache for idx and reserves memory for both,
// waiting for the controller if needed.
func acquire(ctx context.Context, idx *fmindex.Index, o options) (*Engine, error) {
	ranks := rank.New(idx, rank.WithStride(o.rankStride))
	size := int64(idx.SizeInBytes() + ranks.SizeInBytes())
	if err := o.controller.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}
	return newEngine(idx, ranks, size, o), nil
}

// Build indexes p and returns an engine over it.
func Build(ctx context.Context, p *prg.PRG, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	ctx, span := o.tracer.Start(ctx, "gramsearch.Build",
		trace.WithAttributes(
			attribute.Int("prg_len", p.Len()),
			attribute.Int("sites", p.NumSites()),
		),
	)
	defer span.End()

	start := time.Now()
	idx, err := fmindex.Build(p)
	o.logger.LogBuild(ctx, p.Len(), p.NumSites(), time.Since(start), err)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	e, err := acquire(ctx, idx, o)
	endSpan(span, err)
	return e, err
}

// Open reads the snapshot name from store. Reads go through the resource
// controller's IO limit when one is set; otherwise mappable blobs are
// decoded in place.
func Open(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	ctx, span := o.tracer.Start(ctx, "gramsearch.Open",
		trace.WithAttributes(attribute.String("name", name)),
	)
	defer span.End()

	start := time.Now()
	idx, size, err := load(ctx, store, name, o.controller)
	err = translateError(err)
	d := time.Since(start)
	o.metricsCollector.RecordIndexLoad(size, d, err)

	var rows uint64
	if idx != nil {
		rows = idx.Len()
	}
	o.logger.WithIndex(name).LogIndexLoad(ctx, name, size, rows, d, err)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("bytes", size),
		attribute.Int64("rows", int64(rows)),
	)

	e, err := acquire(ctx, idx, o)
	endSpan(span, err)
	return e, err
}

func load(ctx context.Context, store blobstore.Store, name string, rc *resource.Controller) (*fmindex.Index, int64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = blob.Close() }()

	size := blob.Size()
	if m, ok := blob.(blobstore.Mappable); ok && rc.Config().IOLimitBytesPerSec == 0 {
		data, err := m.Bytes()
		if err != nil {
			return nil, size, err
		}
		idx, err := fmindex.LoadBytes(data)
		return idx, size, err
	}

	var r io.Reader = blobstore.NewReader(ctx, blob)
	if rc != nil {
		r = resource.NewRateLimitedReader(ctx, r, rc)
	}
	idx, err := fmindex.Load(r)
	return idx, size, err
}

// OpenFile loads a snapshot from the local file system.
func OpenFile(ctx context.Context, path string, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	ctx, span := o.tracer.Start(ctx, "gramsearch.OpenFile",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	start := time.Now()
	idx, err := fmindex.LoadFile(path)
	err = translateError(err)
	d := time.Since(start)

	var size int64
	var rows uint64
	if idx != nil {
		size = int64(idx.SizeInBytes())
		rows = idx.Len()
	}
	o.metricsCollector.RecordIndexLoad(size, d, err)
	o.logger.LogIndexLoad(ctx, path, size, rows, d, err)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	e, err := acquire(ctx, idx, o)
	endSpan(span, err)
	return e, err
}

// Save writes a snapshot of the index to store under name.
func (e *Engine) Save(ctx context.Context, store blobstore.Store, name string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	data, err := e.idx.Bytes(fmindex.WithCompression(e.opts.compression))
	if err == nil {
		err = store.Put(ctx, name, data)
	}
	e.opts.logger.LogSnapshot(ctx, name, len(data), err)
	return err
}

// Index returns the underlying full-text index.
func (e *Engine) Index() *fmindex.Index { return e.idx }

// PRG returns the indexed graph.
func (e *Engine) PRG() *prg.PRG { return e.idx.PRG() }

// SizeInBytes estimates the memory held by the index and rank cache.
func (e *Engine) SizeInBytes() int64 { return e.reserved }

// Ranks returns the engine's rank cache.
func (e *Engine) Ranks() *rank.Cache { return e.ranks }

// Search parses query as an ACGT string and searches for it.
func (e *Engine) Search(ctx context.Context, query string) (*Result, error) {
	syms, err := search.ParseQuery(query)
	if err != nil {
		err = translateError(err)
		e.opts.metricsCollector.RecordSearch(len(query), 0, 0, err)
		return nil, err
	}
	return e.SearchSymbols(ctx, syms)
}

// SearchSymbols searches for a query given as base symbols.
func (e *Engine) SearchSymbols(ctx context.Context, query []prg.Symbol) (*Result, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	ctx, span := e.opts.tracer.Start(ctx, "gramsearch.Search",
		trace.WithAttributes(attribute.Int("query_len", len(query))),
	)
	defer span.End()

	if err := e.opts.controller.AcquireSearch(ctx); err != nil {
		endSpan(span, err)
		return nil, err
	}
	defer e.opts.controller.ReleaseSearch()

	start := time.Now()
	frontier, err := e.searcher.Search(ctx, query)
	err = translateError(err)
	d := time.Since(start)

	var matches uint64
	if err == nil {
		matches = frontier.Matches()
	}
	e.opts.metricsCollector.RecordSearch(len(query), matches, d, err)
	e.opts.logger.LogSearch(ctx, len(query), frontier.Len(), matches, d, err)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("states", frontier.Len()),
		attribute.Int64("matches", int64(matches)),
	)
	endSpan(span, nil)
	return newResult(e.idx, query, frontier), nil
}

// Close releases the engine's memory reservation. Further searches fail
// with ErrClosed.
func (e *Engine) Close() error {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.opts.controller.ReleaseMemory(e.reserved)
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
