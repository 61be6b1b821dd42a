// Package sink delivers error records to telemetry backends.
//
// A Sink receives flattened errors.Record values at a telemetry boundary.
// Terminal sinks write to slog, Prometheus, NATS JetStream, a Redis stream or
// the SQLite record store. Multi fans a record out to several sinks and
// Buffered batches records and flushes them on a schedule.
//
// Delivery failures are returned to the caller; the error being recorded is
// never altered by a failing sink.
package sink
