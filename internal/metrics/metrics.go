package metrics

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Prometheus collectors for the retrieval pipeline and indexer.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	StageDuration   *prometheus.HistogramVec
	StageRetries    *prometheus.CounterVec
	RerankOutcomes  *prometheus.CounterVec
	EvidenceDropped prometheus.Counter
	ChunksIndexed   prometheus.Counter
	MessagesTotal   *prometheus.CounterVec
}

// registers the collectors once per process.
//
// Metrics:
//   - kbase_pipeline_stage_duration_seconds{stage}
//   - kbase_pipeline_stage_retries_total{stage}
//   - kbase_rerank_outcomes_total{outcome}
//   - kbase_evidence_dropped_total
//   - kbase_chunks_indexed_total
//   - kbase_messages_total{status}
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			StageDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "kbase_pipeline_stage_duration_seconds",
					Help:    "Duration of each retrieval pipeline stage in seconds",
					Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
				},
				[]string{"stage"}, // embed, query, resolve, rerank, generate
			),

			StageRetries: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kbase_pipeline_stage_retries_total",
					Help: "Total number of retried external calls",
				},
				[]string{"stage"},
			),

			RerankOutcomes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kbase_rerank_outcomes_total",
					Help: "Rerank results by outcome (applied or skip reason)",
				},
				[]string{"outcome"},
			),

			EvidenceDropped: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "kbase_evidence_dropped_total",
					Help: "Vector matches discarded because no owned chunk resolved",
				},
			),

			ChunksIndexed: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "kbase_chunks_indexed_total",
					Help: "Chunks upserted and marked indexed",
				},
			),

			MessagesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kbase_messages_total",
					Help: "Message sends by result",
				},
				[]string{"status"}, // answered, failed
			),
		}
	})

	return globalMetrics
}

func (m *Metrics) ObserveStage(stage string, started time.Time) {
	if m == nil {
		return
	}

	m.StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Retry(stage string) {
	if m == nil {
		return
	}

	m.StageRetries.WithLabelValues(stage).Inc()
}

func (m *Metrics) Rerank(outcome string) {
	if m == nil {
		return
	}

	m.RerankOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DroppedEvidence(n int) {
	if m == nil || n <= 0 {
		return
	}

	m.EvidenceDropped.Add(float64(n))
}

func (m *Metrics) Indexed(n int) {
	if m == nil || n <= 0 {
		return
	}

	m.ChunksIndexed.Add(float64(n))
}

func (m *Metrics) Message(status string) {
	if m == nil {
		return
	}

	m.MessagesTotal.WithLabelValues(status).Inc()
}

// exposes the default registry on a gin route
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
