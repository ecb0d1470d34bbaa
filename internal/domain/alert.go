package domain

// Severity classifies anomaly alerts, ordered LOW < MEDIUM < HIGH < CRITICAL
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// AtLeast reports whether s ranks at or above min. Unknown severities rank
// below LOW.
func (s Severity) AtLeast(min Severity) bool {
	rank, ok := severityRank[s]
	if !ok {
		return false
	}
	return rank >= severityRank[min]
}

// ParseSeverity maps a configured severity name to a Severity, falling back
// to LOW for unrecognized values
func ParseSeverity(s string) Severity {
	sev := Severity(s)
	if _, ok := severityRank[sev]; !ok {
		return SeverityLow
	}
	return sev
}

// AnomalyAlert is the transient finding handed to the alert dispatcher.
// It is not persisted by the pipeline; only the summary's anomaly count
// survives a run.
type AnomalyAlert struct {
	AlertID       string   `json:"alert_id"`
	MetricName    string   `json:"metric_name"`
	EventType     string   `json:"event_type"`
	CurrentValue  float64  `json:"current_value"`
	ExpectedValue float64  `json:"expected_value"`
	Score         float64  `json:"score"`
	Severity      Severity `json:"severity"`
	WindowStart   string   `json:"window_start"`
	WindowEnd     string   `json:"window_end"`
	Message       string   `json:"message"`
}
