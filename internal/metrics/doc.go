// Package metrics provides the metrics hooks of the error toolkit.
//
// # Design Philosophy
//
// Components depend on the Recorder interface and default to NoopRecorder, so
// metrics collection never requires nil checks at call sites.
//
// # Architecture
//
//  1. Recorder interface - error, retry decision and sink delivery hooks
//  2. NoopRecorder - default implementation that does nothing
//  3. PrometheusRecorder - client_golang counters and histograms, scraped
//     through HTTPHandler
//
// # Usage Pattern
//
//	reg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	s := sink.NewMetricsSink(recorder)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
//
// Label values are plain strings so the package does not depend on the error
// model it observes.
package metrics
