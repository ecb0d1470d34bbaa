package dto

// FieldErrorDetail describes one violated field in a rejected submission
type FieldErrorDetail struct {
	Field   string `json:"field" example:"user_id"`
	Message string `json:"message" example:"length must be between 1 and 128"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string             `json:"error" example:"validation_failed"`
	Message string             `json:"message,omitempty" example:"event rejected"`
	Details []FieldErrorDetail `json:"details,omitempty"`
}

// IngestEventResponse represents a successful event ingestion response
type IngestEventResponse struct {
	EventID string `json:"event_id" example:"2f1f86a4-9c35-4f7e-9f11-8a3d1c2b4e5d"`
	Status  string `json:"status" example:"accepted"`
}

// IngestEventsBulkResponse represents a bulk ingestion response
type IngestEventsBulkResponse struct {
	Accepted int      `json:"accepted" example:"5"`
	Rejected int      `json:"rejected" example:"1"`
	EventIDs []string `json:"event_ids,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// HourlyMetricsResponse represents the counter totals for one hour window
type HourlyMetricsResponse struct {
	Date        string           `json:"date" example:"2026-08-30"`
	Hour        string           `json:"hour" example:"14:00"`
	TotalEvents int64            `json:"total_events" example:"5000"`
	EventTypes  map[string]int64 `json:"event_types"`
}
