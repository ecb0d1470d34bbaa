package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRawEvent() RawEvent {
	return RawEvent{
		EventType: EventTypePageView,
		Source:    EventSourceWeb,
		UserID:    "user_123",
	}
}

func TestValidateRaw_Valid(t *testing.T) {
	raw := validRawEvent()
	raw.Properties = Properties{"page": "/pricing", "count": 3.0, "flag": true}
	raw.Timestamp = "2026-08-30T14:05:12Z"
	raw.SessionID = "sess_42"

	validated, err := ValidateRaw(raw)

	assert.NoError(t, err)
	assert.Equal(t, "user_123", validated.UserID)
	assert.Equal(t, EventTypePageView, validated.EventType)
}

func TestValidateRaw_TrimsUserID(t *testing.T) {
	raw := validRawEvent()
	raw.UserID = "  user_123  "

	validated, err := ValidateRaw(raw)

	assert.NoError(t, err)
	assert.Equal(t, "user_123", validated.UserID)
}

func TestValidateRaw_AllEventTypesAccepted(t *testing.T) {
	types := []EventType{
		EventTypePageView, EventTypeClick, EventTypeFormSubmit, EventTypePurchase,
		EventTypeSignUp, EventTypeLogin, EventTypeError, EventTypeCustom,
	}

	for _, eventType := range types {
		raw := validRawEvent()
		raw.EventType = eventType

		_, err := ValidateRaw(raw)
		assert.NoError(t, err, "event type %s should be accepted", eventType)
	}
}

func TestValidateRaw_UnknownEventType(t *testing.T) {
	raw := validRawEvent()
	raw.EventType = "teleport"

	_, err := ValidateRaw(raw)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Fields, 1)
	assert.Equal(t, "event_type", validationErr.Fields[0].Field)
}

func TestValidateRaw_UnknownSource(t *testing.T) {
	raw := validRawEvent()
	raw.Source = "carrier_pigeon"

	_, err := ValidateRaw(raw)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Fields, 1)
	assert.Equal(t, "source", validationErr.Fields[0].Field)
}

func TestValidateRaw_UserIDControlChars(t *testing.T) {
	for _, userID := range []string{"user\x00", "\x1fuser", "us\ter", "us\ner"} {
		raw := validRawEvent()
		raw.UserID = userID

		_, err := ValidateRaw(raw)

		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr, "user_id %q should be rejected", userID)
	}
}

func TestValidateRaw_UserIDLength(t *testing.T) {
	raw := validRawEvent()
	raw.UserID = strings.Repeat("a", 128)
	_, err := ValidateRaw(raw)
	assert.NoError(t, err)

	raw.UserID = strings.Repeat("a", 129)
	_, err = ValidateRaw(raw)
	assert.Error(t, err)

	raw.UserID = ""
	_, err = ValidateRaw(raw)
	assert.Error(t, err)

	raw.UserID = "   "
	_, err = ValidateRaw(raw)
	assert.Error(t, err)
}

func TestValidateRaw_UserIDLengthCountsRunes(t *testing.T) {
	// 128 two-byte characters; the bound is per character, not per byte
	raw := validRawEvent()
	raw.UserID = strings.Repeat("é", 128)
	_, err := ValidateRaw(raw)
	assert.NoError(t, err)

	raw.UserID = strings.Repeat("é", 129)
	_, err = ValidateRaw(raw)
	assert.Error(t, err)
}

func TestValidateRaw_CollectsAllViolations(t *testing.T) {
	raw := RawEvent{
		EventType: "teleport",
		Source:    "carrier_pigeon",
		UserID:    "",
		Timestamp: "yesterday",
	}

	_, err := ValidateRaw(raw)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Fields, 4)

	fields := make([]string, 0, len(validationErr.Fields))
	for _, f := range validationErr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"event_type", "source", "user_id", "timestamp"}, fields)
}

func TestValidateRaw_PropertiesDepthBound(t *testing.T) {
	nested := map[string]interface{}{"e": 1}
	for i := 0; i < 4; i++ {
		nested = map[string]interface{}{"k": nested}
	}

	raw := validRawEvent()
	raw.Properties = Properties(nested)

	_, err := ValidateRaw(raw)
	assert.Error(t, err)
}

func TestValidateRaw_PropertiesSizeBound(t *testing.T) {
	props := make(Properties)
	for i := 0; i < propertiesMaxKeys+1; i++ {
		props[strings.Repeat("k", i+1)] = i
	}

	raw := validRawEvent()
	raw.Properties = props

	_, err := ValidateRaw(raw)
	assert.Error(t, err)
}

func TestValidateRaw_BadTimestamp(t *testing.T) {
	raw := validRawEvent()
	raw.Timestamp = "2026-08-30 14:05:12"

	_, err := ValidateRaw(raw)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "timestamp", validationErr.Fields[0].Field)
}
