package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records outcomes of the outbox drain loop.
type SyncMetrics struct {
	batchDuration *prometheus.HistogramVec
	published     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	pending       prometheus.Gauge
}

// NewSyncMetrics registers the sync worker metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_batch_duration_seconds",
		Help:    "Duration of one outbox drain batch in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"worker"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_events_published",
		Help: "Outbox events mirrored to the remote store.",
	}, []string{"aggregate_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_events_failed",
		Help: "Outbox events that failed to publish.",
	}, []string{"aggregate_type"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sync_events_pending",
		Help: "Unpublished outbox events at the last poll.",
	})
	reg.MustRegister(batchDuration, published, failed, pending)
	return &SyncMetrics{
		batchDuration: batchDuration,
		published:     published,
		failed:        failed,
		pending:       pending,
	}
}

// ObserveBatch records the duration for the named worker.
func (s *SyncMetrics) ObserveBatch(worker string, duration time.Duration) {
	if s == nil || s.batchDuration == nil {
		return
	}
	s.batchDuration.WithLabelValues(normalizeLabel(worker)).Observe(duration.Seconds())
}

// IncPublished increments the published counter for the aggregate type.
func (s *SyncMetrics) IncPublished(aggregateType string) {
	if s == nil || s.published == nil {
		return
	}
	s.published.WithLabelValues(normalizeLabel(aggregateType)).Inc()
}

// IncFailed increments the failure counter for the aggregate type.
func (s *SyncMetrics) IncFailed(aggregateType string) {
	if s == nil || s.failed == nil {
		return
	}
	s.failed.WithLabelValues(normalizeLabel(aggregateType)).Inc()
}

// SetPending records the current unpublished backlog size.
func (s *SyncMetrics) SetPending(count int64) {
	if s == nil || s.pending == nil {
		return
	}
	s.pending.Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
