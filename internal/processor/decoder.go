package processor

import (
	"encoding/json"
	"fmt"

	"github.com/streamworks/eventstream/internal/domain"
)

// EventDecoder defines the interface for decoding raw log record payloads
// into enriched events
type EventDecoder interface {
	Decode(payload []byte) (domain.EnrichedEvent, error)
}

// JSONEventDecoder implements EventDecoder for JSON log payloads
type JSONEventDecoder struct{}

// NewJSONEventDecoder creates a new JSON event decoder
func NewJSONEventDecoder() *JSONEventDecoder {
	return &JSONEventDecoder{}
}

// Decode parses a JSON payload into an EnrichedEvent
func (d *JSONEventDecoder) Decode(payload []byte) (domain.EnrichedEvent, error) {
	var event domain.EnrichedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.EnrichedEvent{}, fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	if event.EventID == "" {
		return domain.EnrichedEvent{}, fmt.Errorf("event payload missing event_id")
	}
	if event.EventType == "" {
		return domain.EnrichedEvent{}, fmt.Errorf("event payload missing event_type")
	}

	return event, nil
}
