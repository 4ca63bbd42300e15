// Package metrics records per-run generator metrics in a Prometheus registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feedgen/internal/application/port"
)

const defaultNamespace = "feedgen"

// Metrics 每次运行一个独立 registry，运行结束后可导出为 node_exporter textfile
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	FeedSources  *prometheus.GaugeVec
	FeedOutliers *prometheus.GaugeVec

	Feeds         prometheus.Gauge
	EmptyFeeds    prometheus.Gauge
	RunDuration   prometheus.Histogram
	LastRunSecond prometheus.Gauge
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "fetch_total",
			Help:      "Exchange fetches by outcome",
		}, []string{"exchange", "outcome"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "fetch_duration_seconds",
			Help:      "Exchange fetch duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"exchange"}),
		FeedSources: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "sources",
			Help:      "Number of sources selected per feed",
		}, []string{"feed_id", "pair"}),
		FeedOutliers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "outliers",
			Help:      "Number of sources excluded as price outliers per feed",
		}, []string{"feed_id", "pair"}),
		Feeds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "feeds",
			Help:      "Feeds in the generated document",
		}),
		EmptyFeeds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "empty_feeds",
			Help:      "Feeds with no sources in the generated document",
		}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Generation run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120},
		}),
		LastRunSecond: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "last_completed_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
	}
}

func (m *Metrics) ObserveFetch(exchange, outcome string, d time.Duration) {
	m.FetchTotal.WithLabelValues(exchange, outcome).Inc()
	m.FetchDuration.WithLabelValues(exchange).Observe(d.Seconds())
}

func (m *Metrics) ObserveFeed(feedID uint32, pair string, sources, outliers int) {
	id := strconv.FormatUint(uint64(feedID), 10)
	m.FeedSources.WithLabelValues(id, pair).Set(float64(sources))
	m.FeedOutliers.WithLabelValues(id, pair).Set(float64(outliers))
}

func (m *Metrics) ObserveRun(feeds, emptyFeeds int, d time.Duration) {
	m.Feeds.Set(float64(feeds))
	m.EmptyFeeds.Set(float64(emptyFeeds))
	m.RunDuration.Observe(d.Seconds())
	m.LastRunSecond.SetToCurrentTime()
}

// Gatherer exposes the registry for promhttp or tests
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile 原子写入 textfile collector 格式
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

var _ port.Recorder = (*Metrics)(nil)
