// Package responses defines API response types used by the svcerr HTTP handlers.
package responses

import "time"

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

// IngestResponse reports how many records were accepted.
type IngestResponse struct {
	Status    string `json:"status"`
	Accepted  int    `json:"accepted"`
	RequestID string `json:"request_id,omitempty"`
}

// CodeEntry describes one error code.
type CodeEntry struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
}

// CodesResponse lists the known error codes.
type CodesResponse struct {
	Codes []CodeEntry `json:"codes"`
}
