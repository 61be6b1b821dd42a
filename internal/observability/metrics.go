package observability

import (
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/metrics"
)

// MetricsCollector keeps in-process error and retry counters. It implements
// metrics.Recorder for runs where no Prometheus endpoint is scraped, such as
// one-shot CLI invocations.
type MetricsCollector struct {
	mu sync.RWMutex

	errorsByCode     map[string]int64
	errorsBySeverity map[string]int64
	errorsByKind     map[string]int64
	totalErrors      int64

	retries     int64
	giveUps     int64
	retryDelays []time.Duration

	sinkResults   map[string]map[metrics.ResultLabel]int64
	sinkDurations map[string][]time.Duration
}

var _ metrics.Recorder = (*MetricsCollector)(nil)

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		errorsByCode:     make(map[string]int64),
		errorsBySeverity: make(map[string]int64),
		errorsByKind:     make(map[string]int64),
		sinkResults:      make(map[string]map[metrics.ResultLabel]int64),
		sinkDurations:    make(map[string][]time.Duration),
	}
}

// IncError counts one recorded error.
func (mc *MetricsCollector) IncError(kind, code, severity string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.totalErrors++
	mc.errorsByCode[code]++
	mc.errorsBySeverity[severity]++
	mc.errorsByKind[kind]++

	slog.Debug("Error recorded", "kind", kind, "error_code", code, "total", mc.totalErrors)
}

// IncRetryDecision counts a retry loop decision.
func (mc *MetricsCollector) IncRetryDecision(kind string, decision metrics.DecisionLabel) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if decision == metrics.DecisionRetry {
		mc.retries++
	} else {
		mc.giveUps++
	}
	slog.Debug("Retry decision", "kind", kind, "decision", string(decision))
}

// ObserveRetryDelay records a chosen retry delay.
func (mc *MetricsCollector) ObserveRetryDelay(_ string, d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.retryDelays = append(mc.retryDelays, d)
}

// IncSinkResult counts a delivery outcome for sink.
func (mc *MetricsCollector) IncSinkResult(sink string, result metrics.ResultLabel) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	m, ok := mc.sinkResults[sink]
	if !ok {
		m = make(map[metrics.ResultLabel]int64)
		mc.sinkResults[sink] = m
	}
	m[result]++
}

// ObserveSinkDuration records how long a delivery took.
func (mc *MetricsCollector) ObserveSinkDuration(sink string, d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.sinkDurations[sink] = append(mc.sinkDurations[sink], d)
}

// GetSnapshot returns a snapshot of current metrics.
func (mc *MetricsCollector) GetSnapshot() MetricsSnapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snapshot := MetricsSnapshot{
		Timestamp:        time.Now(),
		TotalErrors:      mc.totalErrors,
		ErrorsByCode:     maps.Clone(mc.errorsByCode),
		ErrorsBySeverity: maps.Clone(mc.errorsBySeverity),
		ErrorsByKind:     maps.Clone(mc.errorsByKind),
		Retries:          mc.retries,
		GiveUps:          mc.giveUps,
		SinkFailures:     make(map[string]int64),
	}
	for sink, results := range mc.sinkResults {
		snapshot.SinkFailures[sink] = results[metrics.ResultFailed] + results[metrics.ResultDropped]
	}

	if len(mc.retryDelays) > 0 {
		snapshot.P50RetryDelay = calculatePercentile(mc.retryDelays, 50)
		snapshot.P95RetryDelay = calculatePercentile(mc.retryDelays, 95)
		snapshot.AvgRetryDelay = calculateAverage(mc.retryDelays)
	}

	return snapshot
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Timestamp        time.Time
	TotalErrors      int64
	ErrorsByCode     map[string]int64
	ErrorsBySeverity map[string]int64
	ErrorsByKind     map[string]int64
	Retries          int64
	GiveUps          int64
	P50RetryDelay    time.Duration
	P95RetryDelay    time.Duration
	AvgRetryDelay    time.Duration
	SinkFailures     map[string]int64
}

// FormatMetrics returns a human-readable string of metrics.
func (s MetricsSnapshot) FormatMetrics() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Error Metrics ===\nTimestamp: %s\n\n", s.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Errors: %d\n", s.TotalErrors)
	writeCounts(&b, "By Code", s.ErrorsByCode)
	writeCounts(&b, "By Severity", s.ErrorsBySeverity)
	writeCounts(&b, "By Kind", s.ErrorsByKind)
	fmt.Fprintf(&b, "\nRetry Decisions:\n  Retry: %d\n  Give up: %d\n", s.Retries, s.GiveUps)
	fmt.Fprintf(&b, "  Delay avg/p50/p95: %v / %v / %v\n", s.AvgRetryDelay, s.P50RetryDelay, s.P95RetryDelay)
	writeCounts(&b, "Sink Failures", s.SinkFailures)
	b.WriteString("=====================\n")
	return b.String()
}

func writeCounts(b *strings.Builder, title string, m map[string]int64) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %d\n", k, m[k])
	}
}

func calculateAverage(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

func calculatePercentile(durations []time.Duration, percentile int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := (len(sorted) * percentile) / 100
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
