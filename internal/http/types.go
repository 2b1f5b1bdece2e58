package http

import "github.com/fyrsmithlabs/lswatch/pkg/lswatch"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version,omitempty"`
	ClientID      string            `json:"client_id,omitempty"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
	Registry      lswatch.Stats     `json:"registry"`
}
