package gramsearch

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines an interface for collecting operational metrics.
type MetricsCollector interface {
	// RecordSearch is called after each search. matches is the number of
	// text positions in the final frontier; err is nil if successful.
	RecordSearch(queryLen int, matches uint64, duration time.Duration, err error)

	// RecordIndexLoad is called after a snapshot has been read and decoded.
	RecordIndexLoad(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordIndexLoad(int64, time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchMatches    atomic.Int64
	SearchTotalNanos atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadBytes        atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, matches uint64, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchMatches.Add(int64(matches))
}

// RecordIndexLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndexLoad(bytes int64, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchMatches:  b.SearchMatches.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadBytes:      b.LoadBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount    int64
	SearchErrors   int64
	SearchMatches  int64
	SearchAvgNanos int64
	LoadCount      int64
	LoadErrors     int64
	LoadBytes      int64
}

// PrometheusCollector exports metrics through prometheus/client_golang.
type PrometheusCollector struct {
	opLatency *prometheus.HistogramVec
	matches   prometheus.Histogram
	loadBytes prometheus.Counter
}

// NewPrometheusCollector creates the collector and registers it with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &PrometheusCollector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gramsearch_operation_latency_seconds",
			Help:    "Latency of engine operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		matches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gramsearch_search_matches",
			Help:    "Text positions matched per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		loadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gramsearch_index_load_bytes_total",
			Help: "Snapshot bytes read",
		}),
	}
	for _, c := range []prometheus.Collector{p.opLatency, p.matches, p.loadBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordSearch implements MetricsCollector.
func (p *PrometheusCollector) RecordSearch(_ int, matches uint64, d time.Duration, err error) {
	p.opLatency.WithLabelValues("search", status(err)).Observe(d.Seconds())
	if err == nil {
		p.matches.Observe(float64(matches))
	}
}

// RecordIndexLoad implements MetricsCollector.
func (p *PrometheusCollector) RecordIndexLoad(bytes int64, d time.Duration, err error) {
	p.opLatency.WithLabelValues("load", status(err)).Observe(d.Seconds())
	if err == nil {
		p.loadBytes.Add(float64(bytes))
	}
}
