package domain

import "time"

// QueryLog is one append-only telemetry record per assistant invocation
type QueryLog struct {
	ID             int64     `json:"id"`
	QueryText      string    `json:"query_text"`
	ResponseText   string    `json:"response_text"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ResponseTimeMs int       `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
