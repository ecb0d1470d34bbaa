package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/dto"
	"github.com/streamworks/eventstream/internal/storage"
	"github.com/streamworks/eventstream/internal/stream"
)

// IngestService validates, enriches, and routes submitted events
type IngestService struct {
	appender      stream.Appender
	enricher      *domain.Enricher
	metrics       storage.MetricsStore
	maxRetries    uint64
	retryInterval time.Duration
	log           *zap.Logger
}

// NewIngestService creates a new ingestion service
func NewIngestService(appender stream.Appender, enricher *domain.Enricher, metrics storage.MetricsStore, maxRetries int, log *zap.Logger) *IngestService {
	return &IngestService{
		appender:      appender,
		enricher:      enricher,
		metrics:       metrics,
		maxRetries:    uint64(maxRetries),
		retryInterval: 500 * time.Millisecond,
		log:           log,
	}
}

// IngestEvent validates and enriches one raw event and appends it to the
// ordered log keyed by user_id. The event ID is returned only after the
// append is durably accepted; transient append failures are retried with
// bounded exponential backoff.
func (s *IngestService) IngestEvent(ctx context.Context, raw domain.RawEvent) (string, error) {
	validated, err := domain.ValidateRaw(raw)
	if err != nil {
		return "", err
	}

	enriched := s.enricher.Enrich(validated)

	payload, err := json.Marshal(enriched)
	if err != nil {
		return "", fmt.Errorf("failed to marshal enriched event: %w", err)
	}

	operation := func() error {
		return s.appender.Append(ctx, enriched.UserID, payload)
	}
	notify := func(err error, next time.Duration) {
		s.log.Warn("Stream append failed; retrying",
			zap.String("event_id", enriched.EventID),
			zap.Error(err),
			zap.Duration("next_retry_in", next))
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.retryInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, s.maxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return "", fmt.Errorf("failed to append event to stream: %w", err)
	}

	s.log.Info("Event routed to stream",
		zap.String("event_id", enriched.EventID),
		zap.String("event_type", string(enriched.EventType)))

	return enriched.EventID, nil
}

// IngestBulk processes multiple events independently, returning the IDs of
// accepted events and the error messages of rejected ones
func (s *IngestService) IngestBulk(ctx context.Context, raws []domain.RawEvent) ([]string, []string) {
	var eventIDs []string
	var errors []string

	for i, raw := range raws {
		eventID, err := s.IngestEvent(ctx, raw)
		if err != nil {
			errors = append(errors, fmt.Sprintf("event %d: %v", i, err))
			s.log.Warn("Failed to ingest event in bulk",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, errors
}

// HourlyMetrics reads the counter totals for one hour window
func (s *IngestService) HourlyMetrics(ctx context.Context, date, hour string) (*dto.HourlyMetricsResponse, error) {
	var fields []domain.FieldError
	if _, err := time.Parse("2006-01-02", date); err != nil {
		fields = append(fields, domain.FieldError{Field: "date", Message: "must be formatted YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", hour); err != nil {
		fields = append(fields, domain.FieldError{Field: "hour", Message: "must be formatted HH:00"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	counters, err := s.metrics.QueryHour(ctx, date, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}

	response := &dto.HourlyMetricsResponse{
		Date:       date,
		Hour:       hour,
		EventTypes: make(map[string]int64, len(counters)),
	}
	for _, c := range counters {
		response.TotalEvents += c.Count
		response.EventTypes[string(c.EventType)] += c.Count
	}

	return response, nil
}
