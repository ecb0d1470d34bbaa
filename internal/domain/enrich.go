package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Enricher stamps validated events with an identifier, canonical timestamps,
// and UTC partition keys. Pure aside from ID generation and the clock read;
// it cannot fail once given a valid RawEvent.
type Enricher struct {
	now func() time.Time
}

// NewEnricher creates an enricher using the wall clock
func NewEnricher() *Enricher {
	return &Enricher{now: time.Now}
}

// NewEnricherWithClock creates an enricher with an injected clock
func NewEnricherWithClock(now func() time.Time) *Enricher {
	return &Enricher{now: now}
}

// Enrich produces exactly one EnrichedEvent from a validated RawEvent.
// The effective timestamp is the client-supplied one when present and
// parseable, otherwise the current server time.
func (e *Enricher) Enrich(raw RawEvent) EnrichedEvent {
	now := e.now().UTC()

	effective := now
	if raw.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
			effective = ts.UTC()
		}
	}

	return EnrichedEvent{
		EventID:    uuid.NewString(),
		EventType:  raw.EventType,
		Source:     raw.Source,
		UserID:     raw.UserID,
		Properties: raw.Properties,
		Timestamp:  effective.Format(time.RFC3339),
		SessionID:  raw.SessionID,
		IngestedAt: now.Format(time.RFC3339),
		Year:       fmt.Sprintf("%d", effective.Year()),
		Month:      fmt.Sprintf("%02d", int(effective.Month())),
		Day:        fmt.Sprintf("%02d", effective.Day()),
		Hour:       fmt.Sprintf("%02d", effective.Hour()),
	}
}
