package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "svcerr"

// retryDelayBuckets covers the API backoff range (1s..32s) and sub-second hints.
var retryDelayBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	errors         *prom.CounterVec
	retryDecisions *prom.CounterVec
	retryDelay     *prom.HistogramVec
	sinkResults    *prom.CounterVec
	sinkDuration   *prom.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		errors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Recorded errors by code, severity and kind",
		}, []string{"code", "severity", "kind"}),
		retryDecisions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "retry_decisions_total",
			Help:      "Retry loop decisions by error kind",
		}, []string{"kind", "decision"}),
		retryDelay: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "retry_delay_seconds",
			Help:      "Delay chosen before a retry",
			Buckets:   retryDelayBuckets,
		}, []string{"kind"}),
		sinkResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sink_results_total",
			Help:      "Record deliveries by sink and outcome",
		}, []string{"sink", "result"}),
		sinkDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "sink_duration_seconds",
			Help:      "Duration of record deliveries per sink",
			Buckets:   prom.DefBuckets,
		}, []string{"sink"}),
	}
	reg.MustRegister(pr.errors, pr.retryDecisions, pr.retryDelay, pr.sinkResults, pr.sinkDuration)
	return pr
}

func (p *PrometheusRecorder) IncError(kind, code, severity string) {
	if p == nil || p.errors == nil {
		return
	}
	p.errors.WithLabelValues(code, severity, kind).Inc()
}

func (p *PrometheusRecorder) IncRetryDecision(kind string, decision DecisionLabel) {
	if p == nil || p.retryDecisions == nil {
		return
	}
	p.retryDecisions.WithLabelValues(kind, string(decision)).Inc()
}

func (p *PrometheusRecorder) ObserveRetryDelay(kind string, d time.Duration) {
	if p == nil || p.retryDelay == nil {
		return
	}
	p.retryDelay.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSinkResult(sink string, result ResultLabel) {
	if p == nil || p.sinkResults == nil {
		return
	}
	p.sinkResults.WithLabelValues(sink, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveSinkDuration(sink string, d time.Duration) {
	if p == nil || p.sinkDuration == nil {
		return
	}
	p.sinkDuration.WithLabelValues(sink).Observe(d.Seconds())
}
