package models

import "time"

// MetricsSnapshot is the lightweight aggregate exposed on the admin surface.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	UpstreamCalls            uint64    `json:"upstreamCalls"`
	AverageUpstreamLatencyMs float64   `json:"averageUpstreamLatencyMs"`
	UpstreamFailures         uint64    `json:"upstreamFailures"`
	ActiveSessions           int64     `json:"activeSessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
