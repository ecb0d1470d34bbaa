package domain

// EventType enumerates the accepted event types
type EventType string

const (
	EventTypePageView   EventType = "page_view"
	EventTypeClick      EventType = "click"
	EventTypeFormSubmit EventType = "form_submit"
	EventTypePurchase   EventType = "purchase"
	EventTypeSignUp     EventType = "sign_up"
	EventTypeLogin      EventType = "login"
	EventTypeError      EventType = "error"
	EventTypeCustom     EventType = "custom"
)

// Valid reports whether t is a member of the closed event type set
func (t EventType) Valid() bool {
	switch t {
	case EventTypePageView, EventTypeClick, EventTypeFormSubmit, EventTypePurchase,
		EventTypeSignUp, EventTypeLogin, EventTypeError, EventTypeCustom:
		return true
	}
	return false
}

// EventSource enumerates the accepted source platforms
type EventSource string

const (
	EventSourceWeb           EventSource = "web"
	EventSourceMobileIOS     EventSource = "mobile_ios"
	EventSourceMobileAndroid EventSource = "mobile_android"
	EventSourceAPI           EventSource = "api"
	EventSourceIOT           EventSource = "iot"
)

// Valid reports whether s is a member of the closed source set
func (s EventSource) Valid() bool {
	switch s {
	case EventSourceWeb, EventSourceMobileIOS, EventSourceMobileAndroid, EventSourceAPI, EventSourceIOT:
		return true
	}
	return false
}

// Properties is the open string-keyed property bag attached to events.
// Values may be strings, numbers, booleans, or nested maps; only overall
// size and depth are bounded, not individual fields.
type Properties map[string]interface{}

// RawEvent represents an untrusted, externally submitted event
type RawEvent struct {
	EventType  EventType   `json:"event_type"`
	Source     EventSource `json:"source"`
	UserID     string      `json:"user_id"`
	Properties Properties  `json:"properties,omitempty"`
	Timestamp  string      `json:"timestamp,omitempty"`
	SessionID  string      `json:"session_id,omitempty"`
}

// EnrichedEvent is a RawEvent stamped with an identifier, canonical
// timestamps, and UTC partition keys. Immutable once handed to the router;
// passed by value through the rest of the pipeline.
type EnrichedEvent struct {
	EventID    string      `json:"event_id"`
	EventType  EventType   `json:"event_type"`
	Source     EventSource `json:"source"`
	UserID     string      `json:"user_id"`
	Properties Properties  `json:"properties,omitempty"`
	Timestamp  string      `json:"timestamp"`
	SessionID  string      `json:"session_id,omitempty"`
	IngestedAt string      `json:"ingested_at"`
	Year       string      `json:"year"`
	Month      string      `json:"month"`
	Day        string      `json:"day"`
	Hour       string      `json:"hour"`
}

// AggregationSummary is the derived per-hour view written by the aggregator.
// Safe to overwrite wholesale; it is not an accumulator.
type AggregationSummary struct {
	Date        string              `json:"date"`
	Hour        string              `json:"hour"`
	TotalEvents int64               `json:"total_events"`
	EventTypes  map[EventType]int64 `json:"event_types"`
	Anomalies   int                 `json:"anomalies"`
	GeneratedAt string              `json:"generated_at"`
}
