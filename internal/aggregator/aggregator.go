package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/alert"
	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/storage"
)

// Config configures the aggregator
type Config struct {
	// AnomalyThreshold is the volume ratio beyond which an alert fires
	AnomalyThreshold float64

	// Now overrides the clock; nil means the wall clock
	Now func() time.Time
}

// Aggregator runs once per hour, compares the current hour's volume against
// the same hour yesterday, writes the hourly summary, and hands any
// anomaly alerts to the dispatcher.
type Aggregator struct {
	store      storage.MetricsStore
	dispatcher alert.Dispatcher
	threshold  float64
	now        func() time.Time
	log        *zap.Logger
}

// NewAggregator creates a new aggregator. dispatcher may be nil, in which
// case anomalies are only recorded in the summary.
func NewAggregator(store storage.MetricsStore, dispatcher alert.Dispatcher, cfg Config, log *zap.Logger) *Aggregator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		store:      store,
		dispatcher: dispatcher,
		threshold:  cfg.AnomalyThreshold,
		now:        now,
		log:        log,
	}
}

// Run performs one aggregation pass for the current (date, hour). Store
// failures are fatal for the run; dispatch failures are logged and
// swallowed because the summary already captured the finding.
func (a *Aggregator) Run(ctx context.Context) (domain.AggregationSummary, []domain.AnomalyAlert, error) {
	now := a.now().UTC()
	date := now.Format("2006-01-02")
	hour := fmt.Sprintf("%02d:00", now.Hour())
	comparisonDate := now.AddDate(0, 0, -1).Format("2006-01-02")

	a.log.Info("Running aggregation",
		zap.String("date", date),
		zap.String("hour", hour))

	current, err := a.store.QueryHour(ctx, date, hour)
	if err != nil {
		return domain.AggregationSummary{}, nil, fmt.Errorf("failed to read current counters: %w", err)
	}
	comparison, err := a.store.QueryHour(ctx, comparisonDate, hour)
	if err != nil {
		return domain.AggregationSummary{}, nil, fmt.Errorf("failed to read comparison counters: %w", err)
	}

	var currentTotal, comparisonTotal int64
	breakdown := make(map[domain.EventType]int64)
	for _, c := range current {
		currentTotal += c.Count
		breakdown[c.EventType] += c.Count
	}
	for _, c := range comparison {
		comparisonTotal += c.Count
	}

	alerts := a.evaluate(currentTotal, comparisonTotal, now)

	summary := domain.AggregationSummary{
		Date:        date,
		Hour:        hour,
		TotalEvents: currentTotal,
		EventTypes:  breakdown,
		Anomalies:   len(alerts),
		GeneratedAt: now.Format(time.RFC3339),
	}

	if err := a.store.PutSummary(ctx, summary); err != nil {
		return domain.AggregationSummary{}, nil, fmt.Errorf("failed to write summary: %w", err)
	}

	if len(alerts) > 0 && a.dispatcher != nil {
		if err := a.dispatcher.Dispatch(ctx, alerts); err != nil {
			a.log.Error("Alert dispatch failed; summary already written",
				zap.Int("alerts", len(alerts)),
				zap.Error(err))
		}
	}

	a.log.Info("Aggregation complete",
		zap.Int64("total_events", currentTotal),
		zap.Int64("comparison_total", comparisonTotal),
		zap.Int("anomalies", len(alerts)))

	return summary, alerts, nil
}

// evaluate applies the day-over-day ratio rule. A zero comparison total
// skips anomaly evaluation entirely; there is no division by zero and no
// alert, regardless of current volume.
func (a *Aggregator) evaluate(currentTotal, comparisonTotal int64, now time.Time) []domain.AnomalyAlert {
	if comparisonTotal == 0 {
		return nil
	}

	ratio := float64(currentTotal) / float64(comparisonTotal)
	windowStart := now.Truncate(time.Hour)
	windowEnd := windowStart.Add(time.Hour)

	var alerts []domain.AnomalyAlert

	switch {
	case ratio > a.threshold:
		severity := domain.SeverityHigh
		if ratio > a.threshold*1.5 {
			severity = domain.SeverityCritical
		}
		alerts = append(alerts, domain.AnomalyAlert{
			AlertID:       uuid.NewString(),
			MetricName:    "volume_spike",
			EventType:     "all",
			CurrentValue:  float64(currentTotal),
			ExpectedValue: float64(comparisonTotal),
			Score:         ratio,
			Severity:      severity,
			WindowStart:   windowStart.Format(time.RFC3339),
			WindowEnd:     windowEnd.Format(time.RFC3339),
			Message: fmt.Sprintf("Event volume %.1fx higher than same hour yesterday (%d vs %d)",
				ratio, currentTotal, comparisonTotal),
		})

	case ratio < 1/a.threshold:
		alerts = append(alerts, domain.AnomalyAlert{
			AlertID:       uuid.NewString(),
			MetricName:    "volume_drop",
			EventType:     "all",
			CurrentValue:  float64(currentTotal),
			ExpectedValue: float64(comparisonTotal),
			Score:         ratio,
			Severity:      domain.SeverityHigh,
			WindowStart:   windowStart.Format(time.RFC3339),
			WindowEnd:     windowEnd.Format(time.RFC3339),
			Message: fmt.Sprintf("Event volume %.1fx lower than same hour yesterday (%d vs %d)",
				ratio, currentTotal, comparisonTotal),
		})
	}

	return alerts
}
