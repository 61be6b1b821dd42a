package sink

import (
	"context"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/metrics"
	"git.home.luguber.info/inful/svcerr/internal/retry"
)

// MetricsSink counts records by kind, code and severity.
type MetricsSink struct {
	recorder metrics.Recorder
}

// NewMetricsSink returns a sink reporting to recorder.
func NewMetricsSink(recorder metrics.Recorder) *MetricsSink {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &MetricsSink{recorder: recorder}
}

func (s *MetricsSink) Emit(_ context.Context, rec errors.Record) error {
	s.recorder.IncError(rec.Kind, string(rec.Code), rec.Severity.String())
	return nil
}

func (s *MetricsSink) Close() error { return nil }

// DecideRetry asks errors.NextRetry whether attempt should be retried and
// reports the decision and delay to recorder.
func DecideRetry(recorder metrics.Recorder, err error, attempt int, fallback retry.Policy) (time.Duration, bool) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	kind := errors.KindOf(err).String()

	delay, ok := errors.NextRetry(err, attempt, fallback)
	if !ok {
		recorder.IncRetryDecision(kind, metrics.DecisionGiveUp)
		return 0, false
	}
	recorder.IncRetryDecision(kind, metrics.DecisionRetry)
	recorder.ObserveRetryDelay(kind, delay)
	return delay, true
}
