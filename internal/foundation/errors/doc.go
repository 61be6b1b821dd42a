// Package errors is the unified error model of the service client SDK.
//
// Every failed SDK operation returns exactly one Error. The set of kinds is
// closed: Error is sealed, and Visitor lets consumers handle every kind with
// compile-time exhaustiveness.
//
// Key features:
//   - Kind: failure category (network, api, timeout, rate_limit, ...)
//   - Code and Severity: stable classification with a static severity table
//   - ErrorContext: request id, operation, component, free-form fields, backtrace
//   - Retryable / RetryDelay / NextRetry: pure retry decisions, no sleeping
//   - Record: flattened value for telemetry sinks and structured logs
//   - Conversions from HTTP responses, transport failures, decoders and gRPC
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.New(errors.KindAPI).
//		Status(503).
//		Endpoint("GET /v1/orders").
//		Source(cause).
//		WithContext(ctx).
//		Build()
//
//	if d, ok := errors.NextRetry(err, attempt, retry.DefaultPolicy()); ok {
//		// wait d, then retry
//	}
package errors
