package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "covid_etl"

// Metrics holds the Prometheus counters and gauges for one batch run.
type Metrics struct {
	// Release listing and fetching.
	ListingPagesFetched prometheus.Counter
	ReleasesListed      prometheus.Counter
	ReleaseFetchErrors  prometheus.Counter
	PageCache           *prometheus.CounterVec // labels: result={hit,miss}

	// Extraction.
	ReleasesExtracted prometheus.Counter
	ReleasesSkipped   *prometheus.CounterVec // labels: reason={no_confirmed,superseded,parse}
	PatternMatches    *prometheus.CounterVec // labels: rule, pattern

	// Run outcome.
	SeriesDays          prometheus.Gauge
	RunDuration         prometheus.Gauge
	LastSuccessUnixTime prometheus.Gauge

	gatherer prometheus.Gatherer
}

func newMetrics() *Metrics {
	return &Metrics{
		ListingPagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_pages_fetched_total",
			Help:      "Release listing pages fetched.",
		}),
		ReleasesListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_listed_total",
			Help:      "Releases kept by the listing title filter.",
		}),
		ReleaseFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "release_fetch_errors_total",
			Help:      "Releases that could not be fetched or parsed and were skipped.",
		}),
		PageCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_total",
			Help:      "Release page cache lookups by result.",
		}, []string{"result"}),
		ReleasesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_extracted_total",
			Help:      "Releases that contributed a daily fact.",
		}),
		ReleasesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_skipped_total",
			Help:      "Releases that did not contribute, by reason.",
		}, []string{"reason"}),
		PatternMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_matches_total",
			Help:      "Prose pattern matches by rule and pattern.",
		}, []string{"rule", "pattern"}),
		SeriesDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_days",
			Help:      "Days in the last written series.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastSuccessUnixTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ListingPagesFetched,
		m.ReleasesListed,
		m.ReleaseFetchErrors,
		m.PageCache,
		m.ReleasesExtracted,
		m.ReleasesSkipped,
		m.PatternMatches,
		m.SeriesDays,
		m.RunDuration,
		m.LastSuccessUnixTime,
	}
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.gatherer = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.gatherer = reg
	return m
}

// WriteTextfile writes every registered metric to path in the text exposition
// format, for the node exporter textfile collector. The file is replaced
// atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
