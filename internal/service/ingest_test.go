package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/storage"
)

// MockAppender is a mock implementation of stream.Appender
type MockAppender struct {
	mock.Mock
}

func (m *MockAppender) Append(ctx context.Context, partitionKey string, payload []byte) error {
	args := m.Called(ctx, partitionKey, payload)
	return args.Error(0)
}

// MockMetricsStore is a mock implementation of storage.MetricsStore
type MockMetricsStore struct {
	mock.Mock
}

func (m *MockMetricsStore) AddCounters(ctx context.Context, date, hour string, counts map[domain.EventType]int64) error {
	args := m.Called(ctx, date, hour, counts)
	return args.Error(0)
}

func (m *MockMetricsStore) QueryHour(ctx context.Context, date, hour string) ([]storage.MetricCounter, error) {
	args := m.Called(ctx, date, hour)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.MetricCounter), args.Error(1)
}

func (m *MockMetricsStore) PutSummary(ctx context.Context, summary domain.AggregationSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func newTestService(appender *MockAppender, metrics *MockMetricsStore, maxRetries int) *IngestService {
	svc := NewIngestService(appender, domain.NewEnricher(), metrics, maxRetries, zap.NewNop())
	svc.retryInterval = time.Millisecond
	return svc
}

func validRawEvent() domain.RawEvent {
	return domain.RawEvent{
		EventType: domain.EventTypePageView,
		Source:    domain.EventSourceWeb,
		UserID:    "user_123",
	}
}

func TestIngestEvent_Success(t *testing.T) {
	mockAppender := new(MockAppender)
	mockAppender.On("Append", mock.Anything, "user_123", mock.Anything).Return(nil).Once()

	svc := newTestService(mockAppender, new(MockMetricsStore), 3)

	eventID, err := svc.IngestEvent(context.Background(), validRawEvent())

	assert.NoError(t, err)
	assert.NotEmpty(t, eventID)
	mockAppender.AssertExpectations(t)
	mockAppender.AssertNumberOfCalls(t, "Append", 1)
}

func TestIngestEvent_RetriesTransientFailure(t *testing.T) {
	mockAppender := new(MockAppender)
	mockAppender.On("Append", mock.Anything, "user_123", mock.Anything).
		Return(errors.New("throttled")).Twice()
	mockAppender.On("Append", mock.Anything, "user_123", mock.Anything).
		Return(nil).Once()

	svc := newTestService(mockAppender, new(MockMetricsStore), 3)

	eventID, err := svc.IngestEvent(context.Background(), validRawEvent())

	// Exactly one durable append after two transient failures
	assert.NoError(t, err)
	assert.NotEmpty(t, eventID)
	mockAppender.AssertExpectations(t)
	mockAppender.AssertNumberOfCalls(t, "Append", 3)
}

func TestIngestEvent_RetriesExhausted(t *testing.T) {
	mockAppender := new(MockAppender)
	mockAppender.On("Append", mock.Anything, "user_123", mock.Anything).
		Return(errors.New("stream unavailable"))

	svc := newTestService(mockAppender, new(MockMetricsStore), 2)

	eventID, err := svc.IngestEvent(context.Background(), validRawEvent())

	assert.Error(t, err)
	assert.Empty(t, eventID)
	mockAppender.AssertNumberOfCalls(t, "Append", 3)
}

func TestIngestEvent_ValidationFailureSkipsAppend(t *testing.T) {
	mockAppender := new(MockAppender)

	svc := newTestService(mockAppender, new(MockMetricsStore), 3)

	raw := validRawEvent()
	raw.UserID = "user\x00"

	eventID, err := svc.IngestEvent(context.Background(), raw)

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, eventID)
	mockAppender.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestBulk_PartialFailure(t *testing.T) {
	mockAppender := new(MockAppender)
	mockAppender.On("Append", mock.Anything, "user_123", mock.Anything).Return(nil)

	svc := newTestService(mockAppender, new(MockMetricsStore), 3)

	raws := []domain.RawEvent{
		validRawEvent(),
		{EventType: "teleport", Source: domain.EventSourceWeb, UserID: "user_123"},
		validRawEvent(),
	}

	eventIDs, ingestErrors := svc.IngestBulk(context.Background(), raws)

	assert.Len(t, eventIDs, 2)
	assert.Len(t, ingestErrors, 1)
	assert.Contains(t, ingestErrors[0], "event 1")
}

func TestHourlyMetrics_SumsCounters(t *testing.T) {
	mockMetrics := new(MockMetricsStore)
	mockMetrics.On("QueryHour", mock.Anything, "2026-08-30", "14:00").Return([]storage.MetricCounter{
		{EventType: domain.EventTypePageView, Count: 120},
		{EventType: domain.EventTypeClick, Count: 30},
	}, nil)

	svc := newTestService(new(MockAppender), mockMetrics, 3)

	response, err := svc.HourlyMetrics(context.Background(), "2026-08-30", "14:00")

	assert.NoError(t, err)
	assert.Equal(t, int64(150), response.TotalEvents)
	assert.Equal(t, int64(120), response.EventTypes["page_view"])
	assert.Equal(t, int64(30), response.EventTypes["click"])
}

func TestHourlyMetrics_RejectsBadWindow(t *testing.T) {
	svc := newTestService(new(MockAppender), new(MockMetricsStore), 3)

	_, err := svc.HourlyMetrics(context.Background(), "30/08/2026", "2pm")

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Fields, 2)
}
