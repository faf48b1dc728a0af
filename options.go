package gramsearch

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/gramsearch/fmindex"
	"github.com/hupe1980/gramsearch/rank"
	"github.com/hupe1980/gramsearch/resource"
)

type options struct {
	workers          int
	maxFrontier      int
	rankStride       uint64
	compression      fmindex.Compression
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
	tracer           trace.Tracer
}

// Option configures New, Build and Open.
type Option func(*options)

// WithWorkers sets how many search states are extended concurrently
// within one generation. Values below 2 search sequentially (default).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaxFrontier aborts searches with ErrBudgetExceeded once a generation
// holds more than n states. Zero (default) disables the limit.
func WithMaxFrontier(n int) Option {
	return func(o *options) {
		o.maxFrontier = n
	}
}

// WithRankStride sets the checkpoint stride of the rank cache. Larger
// strides use less memory and answer rank queries more slowly.
func WithRankStride(stride uint64) Option {
	return func(o *options) {
		o.rankStride = stride
	}
}

// WithCompression selects the snapshot compression used by Save.
// Default: zstd.
func WithCompression(c fmindex.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController shares search slots, memory accounting and IO
// throttling between engines.
//
// Example:
//
//	rc := resource.NewController(resource.Config{MaxConcurrentSearches: 8})
//	a, _ := gramsearch.Open(ctx, store, "chr1.gsix", gramsearch.WithResourceController(rc))
//	b, _ := gramsearch.Open(ctx, store, "chr2.gsix", gramsearch.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &gramsearch.BasicMetricsCollector{}
//	eng, _ := gramsearch.New(idx, gramsearch.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := gramsearch.NewJSONLogger(slog.LevelInfo)
//	eng, _ := gramsearch.New(idx, gramsearch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTracer sets the tracer for search and load spans. By default the
// global OpenTelemetry provider is used.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		rankStride:       rank.DefaultStride,
		compression:      fmindex.CompressionZSTD,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.tracer == nil {
		o.tracer = getTracer()
	}
	return o
}
