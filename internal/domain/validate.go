package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	userIDMaxLength    = 128
	propertiesMaxKeys  = 64
	propertiesMaxDepth = 4
)

// FieldError describes a single violated constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every violated field of a RawEvent, not just the
// first. It is the caller's fault and is never retried.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateRaw checks a RawEvent against the schema constraints and returns
// a normalized copy on success. All violations are collected before failing.
func ValidateRaw(raw RawEvent) (RawEvent, error) {
	var fields []FieldError

	if raw.EventType == "" {
		fields = append(fields, FieldError{Field: "event_type", Message: "is required"})
	} else if !raw.EventType.Valid() {
		fields = append(fields, FieldError{Field: "event_type", Message: fmt.Sprintf("unknown event type %q", raw.EventType)})
	}

	if raw.Source == "" {
		fields = append(fields, FieldError{Field: "source", Message: "is required"})
	} else if !raw.Source.Valid() {
		fields = append(fields, FieldError{Field: "source", Message: fmt.Sprintf("unknown source %q", raw.Source)})
	}

	if containsControlChars(raw.UserID) {
		fields = append(fields, FieldError{Field: "user_id", Message: "must not contain control characters"})
	}
	userID := strings.TrimSpace(raw.UserID)
	if n := utf8.RuneCountInString(userID); n < 1 || n > userIDMaxLength {
		fields = append(fields, FieldError{Field: "user_id", Message: fmt.Sprintf("length must be between 1 and %d", userIDMaxLength)})
	}

	if len(raw.Properties) > propertiesMaxKeys {
		fields = append(fields, FieldError{Field: "properties", Message: fmt.Sprintf("must not exceed %d keys", propertiesMaxKeys)})
	}
	if propertiesDepth(raw.Properties) > propertiesMaxDepth {
		fields = append(fields, FieldError{Field: "properties", Message: fmt.Sprintf("nesting must not exceed depth %d", propertiesMaxDepth)})
	}

	if raw.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, raw.Timestamp); err != nil {
			fields = append(fields, FieldError{Field: "timestamp", Message: "must be an RFC 3339 instant"})
		}
	}

	if len(fields) > 0 {
		return RawEvent{}, &ValidationError{Fields: fields}
	}

	raw.UserID = userID
	return raw, nil
}

func containsControlChars(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 {
			return true
		}
	}
	return false
}

func propertiesDepth(v interface{}) int {
	switch m := v.(type) {
	case Properties:
		return mapDepth(map[string]interface{}(m))
	case map[string]interface{}:
		return mapDepth(m)
	default:
		return 0
	}
}

func mapDepth(m map[string]interface{}) int {
	if len(m) == 0 {
		return 1
	}
	max := 0
	for _, v := range m {
		if d := propertiesDepth(v); d > max {
			max = d
		}
	}
	return 1 + max
}
