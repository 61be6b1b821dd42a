package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyKind         = "kind"
	KeyErrorCode    = "error_code"
	KeySeverity     = "severity"
	KeyRetryable    = "retryable"
	KeyRetryDelayMS = "retry_delay_ms"
	KeyAttempt      = "attempt"
	KeyRequestID    = "request_id"
	KeyOperation    = "operation"
	KeyComponent    = "component"
	KeySource       = "source"
	KeyContext      = "context"
	KeySink         = "sink"
	KeyRecordID     = "record_id"
	KeyCount        = "count"
	KeyDurationMS   = "duration_ms"
	KeyError        = "error"
	KeyMethod       = "method"
	KeyPath         = "path"
	KeyStatus       = "status"
	KeyRemoteAddr   = "remote_addr"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func ErrorCode(c string) slog.Attr    { return slog.String(KeyErrorCode, c) }
func Severity(s string) slog.Attr     { return slog.String(KeySeverity, s) }
func Retryable(r bool) slog.Attr      { return slog.Bool(KeyRetryable, r) }
func RetryDelayMS(ms int64) slog.Attr { return slog.Int64(KeyRetryDelayMS, ms) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Sink(name string) slog.Attr      { return slog.String(KeySink, name) }
func RecordID(id string) slog.Attr    { return slog.String(KeyRecordID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
