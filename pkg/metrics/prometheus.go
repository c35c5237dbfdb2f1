// Package metrics provides Prometheus metrics for the gait preprocessing pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Trial Metrics - Labeling and segmentation input
	trialsProcessed  prometheus.Counter
	trialsRejected   *prometheus.CounterVec
	subjectsFinished prometheus.Counter

	// Stride Metrics - Segmentation and resampling
	stridesSegmented *prometheus.CounterVec
	stridesDropped   *prometheus.CounterVec
	stridesResampled prometheus.Counter
	resampleLatency  prometheus.Histogram

	// Outlier Metrics - Group filtering
	outlierGroups   *prometheus.CounterVec
	outliersRemoved *prometheus.CounterVec

	// Corpus Metrics - Persistence
	corpusRows       *prometheus.GaugeVec
	artifactsWritten *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec

	// Queue Metrics - Subject job queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics - Subject processing
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gaitprep",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.trialsProcessed = auto.NewCounter(m.counterOpts("trials_processed_total",
		"Total number of trials labeled and segmented"))
	m.trialsRejected = auto.NewCounterVec(m.counterOpts("trials_rejected_total",
		"Total number of trials skipped, by reason"), []string{"reason"})
	m.subjectsFinished = auto.NewCounter(m.counterOpts("subjects_finished_total",
		"Total number of subjects processed through stride generation"))

	m.stridesSegmented = auto.NewCounterVec(m.counterOpts("strides_segmented_total",
		"Total number of strides cut from trials, by joint"), []string{"joint"})
	m.stridesDropped = auto.NewCounterVec(m.counterOpts("strides_dropped_total",
		"Total number of strides dropped before the corpus, by reason"), []string{"reason"})
	m.stridesResampled = auto.NewCounter(m.counterOpts("strides_resampled_total",
		"Total number of strides resampled to K samples"))
	m.resampleLatency = auto.NewHistogram(m.histogramOpts("resample_latency_microseconds",
		"Histogram of per-stride resampling latency in microseconds",
		[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}))

	m.outlierGroups = auto.NewCounterVec(m.counterOpts("outlier_groups_total",
		"Total number of (joint, label) groups seen by the filter, by outcome"), []string{"outcome"})
	m.outliersRemoved = auto.NewCounterVec(m.counterOpts("outliers_removed_total",
		"Total number of strides removed as outliers"), []string{"strategy", "joint"})

	m.corpusRows = auto.NewGaugeVec(m.gaugeOpts("corpus_rows",
		"Number of strides in the corpus, by stage"), []string{"stage"})
	m.artifactsWritten = auto.NewCounterVec(m.counterOpts("artifacts_written_total",
		"Total number of persisted stride arrays, by variant"), []string{"variant"})
	m.stageDuration = auto.NewHistogramVec(m.histogramOpts("stage_duration_seconds",
		"Duration of pipeline stages in seconds", m.histogramBuckets), []string{"stage"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size",
		"Current number of pending subject jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity",
		"Maximum number of pending subject jobs"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total",
		"Total number of subject jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total",
		"Total number of subject jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total",
		"Total number of rejected enqueue attempts"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count",
		"Configured number of subject workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count",
		"Number of workers currently processing a subject"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_seconds",
		"Histogram of per-subject processing time in seconds", m.histogramBuckets))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total",
		"Total number of subjects that failed in a worker"))

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
}

// Trial Metrics Functions.

// RecordTrialProcessed increments the processed trials counter.
func RecordTrialProcessed() {
	globalManager.trialsProcessed.Inc()
}

// RecordTrialRejected increments the rejected trials counter.
func RecordTrialRejected(reason string) {
	globalManager.trialsRejected.WithLabelValues(reason).Inc()
}

// RecordSubjectFinished increments the finished subjects counter.
func RecordSubjectFinished() {
	globalManager.subjectsFinished.Inc()
}

// Stride Metrics Functions.

// RecordStridesSegmented adds n segmented strides for a joint.
func RecordStridesSegmented(joint string, n int) {
	globalManager.stridesSegmented.WithLabelValues(joint).Add(float64(n))
}

// RecordStridesDropped adds n dropped strides for a reason.
func RecordStridesDropped(reason string, n int) {
	globalManager.stridesDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordStrideResampled increments the resampled strides counter.
func RecordStrideResampled() {
	globalManager.stridesResampled.Inc()
}

// RecordResampleLatency records resampling latency in microseconds.
func RecordResampleLatency(latencyUs float64) {
	globalManager.resampleLatency.Observe(latencyUs)
}

// Outlier Metrics Functions.

// RecordOutlierGroup counts one group by outcome: evaluated or exempt.
func RecordOutlierGroup(outcome string) {
	globalManager.outlierGroups.WithLabelValues(outcome).Inc()
}

// RecordOutliersRemoved adds n removed strides.
func RecordOutliersRemoved(strategy, joint string, n int) {
	globalManager.outliersRemoved.WithLabelValues(strategy, joint).Add(float64(n))
}

// Corpus Metrics Functions.

// UpdateCorpusRows sets the corpus size at a stage.
func UpdateCorpusRows(stage string, rows int) {
	globalManager.corpusRows.WithLabelValues(stage).Set(float64(rows))
}

// RecordArtifactWritten increments the artifacts counter for a variant.
func RecordArtifactWritten(variant string) {
	globalManager.artifactsWritten.WithLabelValues(variant).Inc()
}

// RecordStageDuration records a stage duration in seconds.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount adjusts the number of busy workers by delta.
func UpdateWorkerActiveCount(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records per-subject processing time in seconds.
func RecordWorkerProcessingLatency(seconds float64) {
	globalManager.workerProcessingLatency.Observe(seconds)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, path, err)
	}
	return nil
}
