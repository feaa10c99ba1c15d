package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	metrics "github.com/tigerroll/labelpress/pkg/print/core/metrics"
	logger "github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the
// metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Job metrics
	jobsSubmittedTotal  prometheus.Counter
	jobStatusCounter    *prometheus.CounterVec
	jobDurationSeconds  *prometheus.HistogramVec
	jobsEvictedTotal    prometheus.Counter
	queueDepth          prometheus.Gauge

	// Executor metrics
	execDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobsSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "print_jobs_submitted_total",
			Help: "Total number of accepted print job submissions.",
		}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "print_job_status_total",
			Help: "Total number of print job lifecycle events by status.",
		}, []string{"status"}),
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "print_job_duration_seconds",
			Help:    "Duration of print job processing from pickup to terminal state.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		jobsEvictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "print_jobs_evicted_total",
			Help: "Total number of jobs removed by retention eviction.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "print_queue_depth",
			Help: "Current number of pending submissions in the queue.",
		}),
		execDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "print_exec_duration_seconds",
			Help:    "Duration of external renderer executions by result class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"class"}),
	}

	// Register all metrics with the registry.
	registry.MustRegister(r.jobsSubmittedTotal)
	registry.MustRegister(r.jobStatusCounter)
	registry.MustRegister(r.jobDurationSeconds)
	registry.MustRegister(r.jobsEvictedTotal)
	registry.MustRegister(r.queueDepth)
	registry.MustRegister(r.execDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordJobSubmitted records one accepted submission.
func (r *PrometheusRecorder) RecordJobSubmitted(ctx context.Context, job *model.Job) {
	r.jobsSubmittedTotal.Inc()
	r.jobStatusCounter.WithLabelValues(job.Status.String()).Inc()
}

// RecordJobStart records a worker picking a job up.
func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, job *model.Job) {
	r.jobStatusCounter.WithLabelValues(model.JobStatusRunning.String()).Inc()
	logger.Debugf("Metrics: Job '%s' started.", job.ID)
}

// RecordJobEnd records a job reaching a terminal state.
func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, job *model.Job, duration time.Duration) {
	r.jobStatusCounter.WithLabelValues(job.Status.String()).Inc()
	r.jobDurationSeconds.WithLabelValues(job.Status.String()).Observe(duration.Seconds())
	logger.Debugf("Metrics: Job '%s' ended with %s. Duration: %.3fs", job.ID, job.Status, duration.Seconds())
}

// RecordQueueDepth records the current number of pending submissions.
func (r *PrometheusRecorder) RecordQueueDepth(ctx context.Context, depth int) {
	r.queueDepth.Set(float64(depth))
}

// RecordEviction records the number of jobs removed by one retention sweep.
func (r *PrometheusRecorder) RecordEviction(ctx context.Context, count int) {
	r.jobsEvictedTotal.Add(float64(count))
}

// RecordExecDuration records the wall-clock duration of one external
// renderer execution.
func (r *PrometheusRecorder) RecordExecDuration(ctx context.Context, class model.ExecClass, duration time.Duration) {
	r.execDurationSeconds.WithLabelValues(string(class)).Observe(duration.Seconds())
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
