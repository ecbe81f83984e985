// Package metrics defines the Prometheus collectors recorded during a ranking
// run and the ways they leave the process: a scrape endpoint, a textfile for
// the node-exporter textfile collector, or a Pushgateway push.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus collectors for a run. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	DocsIndexedTotal   prometheus.Counter
	WordsIndexedTotal  prometheus.Counter
	DocumentBuildTime  prometheus.Histogram
	TreeHeight         prometheus.Histogram
	CorpusLoadDuration prometheus.Gauge
	QueriesTotal       *prometheus.CounterVec
	QueryLatency       *prometheus.HistogramVec
	QueryResultsCount  prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
}

// New creates all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranker_docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		WordsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranker_words_indexed_total",
				Help: "Total words inserted into document trees.",
			},
		),
		DocumentBuildTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ranker_document_build_seconds",
				Help:    "Time to read, tokenize and index one document.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		TreeHeight: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ranker_tree_height",
				Help:    "Height of each document's word tree.",
				Buckets: []float64{2, 4, 6, 8, 10, 12, 14, 16, 20, 24},
			},
		),
		CorpusLoadDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ranker_corpus_load_seconds",
				Help: "Wall time of the last corpus load.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranker_queries_total",
				Help: "Total queries by result type (hit, zero_result, cached).",
			},
			[]string{"result_type"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranker_query_latency_seconds",
				Help:    "Query ranking latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ranker_query_results_count",
				Help:    "Number of documents emitted per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranker_cache_hits_total",
				Help: "Total number of ranking cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranker_cache_misses_total",
				Help: "Total number of ranking cache misses.",
			},
		),
	}

	m.Registry.MustRegister(
		m.DocsIndexedTotal,
		m.WordsIndexedTotal,
		m.DocumentBuildTime,
		m.TreeHeight,
		m.CorpusLoadDuration,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// ObserveDocument records one indexed document.
func (m *Metrics) ObserveDocument(words, height int, took time.Duration) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Inc()
	m.WordsIndexedTotal.Add(float64(words))
	m.TreeHeight.Observe(float64(height))
	m.DocumentBuildTime.Observe(took.Seconds())
}

// ObserveCorpusLoad records the wall time of a corpus load.
func (m *Metrics) ObserveCorpusLoad(took time.Duration) {
	if m == nil {
		return
	}
	m.CorpusLoadDuration.Set(took.Seconds())
}

// ObserveQuery records one answered query.
func (m *Metrics) ObserveQuery(returned int, cached bool, took time.Duration) {
	if m == nil {
		return
	}
	resultType := "hit"
	switch {
	case cached:
		resultType = "cached"
	case returned == 0:
		resultType = "zero_result"
	}
	cacheStatus := "miss"
	if cached {
		cacheStatus = "hit"
	}
	m.QueriesTotal.WithLabelValues(resultType).Inc()
	m.QueryLatency.WithLabelValues(cacheStatus).Observe(took.Seconds())
	m.QueryResultsCount.Observe(float64(returned))
}

// CacheHit counts a ranking cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss counts a ranking cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current values in the text exposition format,
// atomically replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}

// Push sends the current values to a Pushgateway under the given job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
