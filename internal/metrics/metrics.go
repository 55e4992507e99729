// If you are AI: This file defines the Prometheus metrics for streams, subscribers, ingest and HTTP.
// All Record helpers are nil-safe so components can run without metrics in tests.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trinity"

// Metrics holds every collector exported by the service.
// Allocation: collectors are created once at startup; Record helpers do not allocate
// beyond label lookups.
type Metrics struct {
	StreamsCreated prometheus.Counter
	StreamsRemoved *prometheus.CounterVec
	ActiveStreams  prometheus.Gauge

	ChunksPushed  prometheus.Counter
	ChunkSize     prometheus.Histogram
	IngestRejects *prometheus.CounterVec

	Emissions              prometheus.Counter
	DedupSkips             prometheus.Counter
	ActiveSubscribers      *prometheus.GaugeVec
	SubscriberTerminations *prometheus.CounterVec

	LoginAttempts *prometheus.CounterVec

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics with reg.
// Pass prometheus.NewRegistry() in tests to avoid global registration conflicts.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StreamsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_created_total",
			Help:      "Total number of streams created",
		}),
		StreamsRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_removed_total",
			Help:      "Total number of streams removed, by cause",
		}, []string{"reason"}),
		ActiveStreams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Current number of registered streams",
		}),
		ChunksPushed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_pushed_total",
			Help:      "Total number of chunks written by producers",
		}),
		ChunkSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_size_bytes",
			Help:      "Size of pushed chunks in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~4MB
		}),
		IngestRejects: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rejects_total",
			Help:      "Total number of rejected ingest requests, by cause",
		}, []string{"reason"}),
		Emissions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emissions_total",
			Help:      "Total number of chunks delivered to consumers",
		}),
		DedupSkips: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_skips_total",
			Help:      "Total number of ticks where the chunk was unchanged",
		}),
		ActiveSubscribers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscribers",
			Help:      "Current number of running distribution loops",
		}, []string{"transport"}),
		SubscriberTerminations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriber_terminations_total",
			Help:      "Total number of finished distribution loops, by transport and reason",
		}, []string{"transport", "reason"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts, by result",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// RecordStreamCreated counts a new stream.
func (m *Metrics) RecordStreamCreated() {
	if m == nil {
		return
	}
	m.StreamsCreated.Inc()
	m.ActiveStreams.Inc()
}

// RecordStreamRemoved counts a removal with its cause (producer, admin, idle, session).
func (m *Metrics) RecordStreamRemoved(reason string) {
	if m == nil {
		return
	}
	m.StreamsRemoved.WithLabelValues(reason).Inc()
	m.ActiveStreams.Dec()
}

// RecordChunk counts one producer write.
func (m *Metrics) RecordChunk(size int) {
	if m == nil {
		return
	}
	m.ChunksPushed.Inc()
	m.ChunkSize.Observe(float64(size))
}

// RecordIngestReject counts a refused ingest request.
func (m *Metrics) RecordIngestReject(reason string) {
	if m == nil {
		return
	}
	m.IngestRejects.WithLabelValues(reason).Inc()
}

// SubscriberStarted marks a distribution loop as running.
func (m *Metrics) SubscriberStarted(transport string) {
	if m == nil {
		return
	}
	m.ActiveSubscribers.WithLabelValues(transport).Inc()
}

// SubscriberFinished records a finished loop and folds its counters into the totals.
func (m *Metrics) SubscriberFinished(transport, reason string, emitted, skipped uint64) {
	if m == nil {
		return
	}
	m.ActiveSubscribers.WithLabelValues(transport).Dec()
	m.SubscriberTerminations.WithLabelValues(transport, reason).Inc()
	m.Emissions.Add(float64(emitted))
	m.DedupSkips.Add(float64(skipped))
}

// RecordLogin counts a login attempt (ok, invalid, rejected, limited).
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
