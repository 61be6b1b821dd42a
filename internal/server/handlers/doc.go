// Package handlers contains HTTP handlers for the svcerr HTTP API.
//
// This package provides handlers for:
//   - Health endpoints (monitoring)
//   - Record ingestion into the configured sinks
//   - The error code catalog
//   - Shared response helper functions
//
// Failures are reported through errors.HTTPErrorAdapter, so every error
// response carries the same JSON shape and localized message.
package handlers
