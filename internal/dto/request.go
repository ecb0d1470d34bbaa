package dto

import "github.com/streamworks/eventstream/internal/domain"

// IngestEventRequest represents a single event submission.
// Schema constraints are enforced by the domain validator so that every
// violated field is reported, not just the first; gin binding is used only
// to detect malformed payloads.
type IngestEventRequest struct {
	EventType  string                 `json:"event_type" example:"page_view"`
	Source     string                 `json:"source" example:"web"`
	UserID     string                 `json:"user_id" example:"user_123"`
	Properties map[string]interface{} `json:"properties,omitempty" swaggertype:"object,string" example:"page:/pricing,referrer:google"`
	Timestamp  string                 `json:"timestamp,omitempty" example:"2026-08-30T14:05:12Z"`
	SessionID  string                 `json:"session_id,omitempty" example:"sess_42"`
}

// ToDomain converts the request into an untrusted RawEvent
func (r IngestEventRequest) ToDomain() domain.RawEvent {
	return domain.RawEvent{
		EventType:  domain.EventType(r.EventType),
		Source:     domain.EventSource(r.Source),
		UserID:     r.UserID,
		Properties: domain.Properties(r.Properties),
		Timestamp:  r.Timestamp,
		SessionID:  r.SessionID,
	}
}

// IngestEventsBulkRequest represents a bulk event submission
type IngestEventsBulkRequest struct {
	Events []IngestEventRequest `json:"events"`
}

// HourlyMetricsRequest represents a counter query for one hour window
type HourlyMetricsRequest struct {
	Date string `form:"date" example:"2026-08-30"`
	Hour string `form:"hour" example:"14:00"`
}
