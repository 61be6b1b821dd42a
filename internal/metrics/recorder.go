package metrics

import "time"

// ResultLabel enumerates sink delivery outcomes.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultDropped ResultLabel = "dropped"
)

// DecisionLabel enumerates retry loop decisions.
type DecisionLabel string

const (
	DecisionRetry  DecisionLabel = "retry"
	DecisionGiveUp DecisionLabel = "give_up"
)

// Recorder defines observability hooks for recorded errors, retry decisions
// and sink deliveries. Implementations may forward to Prometheus or keep
// in-memory counters.
type Recorder interface {
	IncError(kind, code, severity string)
	IncRetryDecision(kind string, decision DecisionLabel)
	ObserveRetryDelay(kind string, d time.Duration)
	IncSinkResult(sink string, result ResultLabel)
	ObserveSinkDuration(sink string, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncError(string, string, string)            {}
func (NoopRecorder) IncRetryDecision(string, DecisionLabel)     {}
func (NoopRecorder) ObserveRetryDelay(string, time.Duration)    {}
func (NoopRecorder) IncSinkResult(string, ResultLabel)          {}
func (NoopRecorder) ObserveSinkDuration(string, time.Duration)  {}
