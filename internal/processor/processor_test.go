package processor

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/storage"
	"github.com/streamworks/eventstream/internal/stream"
)

var artifactKeyPattern = regexp.MustCompile(
	`^year=\d{4}/month=\d{2}/day=\d{2}/hour=\d{2}/events-\d{14}-[0-9a-f-]{36}\.jsonl$`)

// MockObjectStore is a mock implementation of storage.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutArtifact(ctx context.Context, key string, body []byte) error {
	args := m.Called(ctx, key, body)
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

func newTestProcessor(objects *MockObjectStore, metrics *MockMetricsStore, cfg Config) *Processor {
	p := NewProcessor(objects, metrics, cfg, zap.NewNop())
	p.retryInterval = time.Millisecond
	p.now = func() time.Time { return time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC) }
	return p
}

func eventRecord(eventID, userID string, eventType domain.EventType) stream.Record {
	payload, _ := json.Marshal(domain.EnrichedEvent{
		EventID:   eventID,
		EventType: eventType,
		Source:    domain.EventSourceWeb,
		UserID:    userID,
		Timestamp: "2026-08-30T14:05:12Z",
	})
	return stream.Record{PartitionKey: userID, SequenceNumber: eventID, Data: payload}
}

func TestProcessPage_MalformedRecordsIsolated(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	mockObjects.On("PutArtifact", mock.Anything,
		mock.MatchedBy(func(key string) bool { return artifactKeyPattern.MatchString(key) }),
		mock.MatchedBy(func(body []byte) bool {
			lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
			return len(lines) == 3
		})).Return(nil).Once()

	mockMetrics.On("AddCounters", mock.Anything, "2026-08-30", "14:00",
		map[domain.EventType]int64{
			domain.EventTypePageView: 2,
			domain.EventTypeClick:    1,
		}).Return(nil).Once()

	proc := newTestProcessor(mockObjects, mockMetrics, Config{MaxRetries: 1})

	records := []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
		{Data: []byte("not json at all")},
		eventRecord("evt-2", "u1", domain.EventTypeClick),
		{Data: []byte(`{"event_type":"click"}`)}, // missing event_id
		eventRecord("evt-3", "u2", domain.EventTypePageView),
	}

	result, err := proc.ProcessPage(context.Background(), records)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, result.Duplicates)
	mockObjects.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestProcessPage_DedupSuppressesReplay(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockMetrics.On("AddCounters", mock.Anything, mock.Anything, mock.Anything,
		map[domain.EventType]int64{domain.EventTypePageView: 1}).Return(nil).Once()

	proc := newTestProcessor(mockObjects, mockMetrics, Config{
		DedupEnabled:  true,
		DedupCapacity: 100,
		MaxRetries:    1,
	})

	records := []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
		eventRecord("evt-1", "u1", domain.EventTypePageView),
	}

	result, err := proc.ProcessPage(context.Background(), records)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Duplicates)
	mockMetrics.AssertExpectations(t)
}

func TestProcessPage_DedupSuppressesCrossPageReplay(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockMetrics.On("AddCounters", mock.Anything, mock.Anything, mock.Anything,
		map[domain.EventType]int64{domain.EventTypePageView: 1}).Return(nil).Once()

	proc := newTestProcessor(mockObjects, mockMetrics, Config{
		DedupEnabled:  true,
		DedupCapacity: 100,
		MaxRetries:    1,
	})

	records := []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
	}

	_, err := proc.ProcessPage(context.Background(), records)
	assert.NoError(t, err)

	result, err := proc.ProcessPage(context.Background(), records)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Duplicates)
	mockMetrics.AssertExpectations(t)
}

func TestProcessPage_FailedPageRedeliversWithoutDedup(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	// First delivery exhausts the artifact-write retries; the redelivered
	// page must persist fully, not read as duplicates
	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable")).Times(2)
	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()
	mockMetrics.On("AddCounters", mock.Anything, "2026-08-30", "14:00",
		map[domain.EventType]int64{
			domain.EventTypePageView: 1,
			domain.EventTypeClick:    1,
		}).Return(nil).Once()

	proc := newTestProcessor(mockObjects, mockMetrics, Config{
		DedupEnabled:  true,
		DedupCapacity: 100,
		MaxRetries:    1,
	})

	records := []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
		eventRecord("evt-2", "u2", domain.EventTypeClick),
	}

	_, err := proc.ProcessPage(context.Background(), records)
	assert.Error(t, err)

	result, err := proc.ProcessPage(context.Background(), records)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Duplicates)
	mockObjects.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestProcessPage_DedupDisabledCountsReplays(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockMetrics.On("AddCounters", mock.Anything, mock.Anything, mock.Anything,
		map[domain.EventType]int64{domain.EventTypePageView: 2}).Return(nil).Once()

	proc := newTestProcessor(mockObjects, mockMetrics, Config{MaxRetries: 1})

	records := []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
		eventRecord("evt-1", "u1", domain.EventTypePageView),
	}

	result, err := proc.ProcessPage(context.Background(), records)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Duplicates)
	mockMetrics.AssertExpectations(t)
}

func TestProcessPage_EmptyPageNoSideEffects(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	proc := newTestProcessor(mockObjects, mockMetrics, Config{MaxRetries: 1})

	result, err := proc.ProcessPage(context.Background(), []stream.Record{
		{Data: []byte("garbage")},
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Failed)
	mockObjects.AssertNotCalled(t, "PutArtifact", mock.Anything, mock.Anything, mock.Anything)
	mockMetrics.AssertNotCalled(t, "AddCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPage_ArtifactWriteRetriedThenFails(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable"))

	proc := newTestProcessor(mockObjects, mockMetrics, Config{MaxRetries: 2})

	result, err := proc.ProcessPage(context.Background(), []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
	})

	assert.Error(t, err)
	assert.Equal(t, 1, result.Processed)
	mockObjects.AssertNumberOfCalls(t, "PutArtifact", 3)
	mockMetrics.AssertNotCalled(t, "AddCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPage_CounterUpdateTransientFailureRecovers(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockMetrics.On("AddCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("throttled")).Once()
	mockMetrics.On("AddCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	proc := newTestProcessor(mockObjects, mockMetrics, Config{MaxRetries: 2})

	_, err := proc.ProcessPage(context.Background(), []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
	})

	assert.NoError(t, err)
	mockMetrics.AssertNumberOfCalls(t, "AddCounters", 2)
}

func TestProcessPage_BatchBodyIsJSONLines(t *testing.T) {
	mockObjects := new(MockObjectStore)
	mockMetrics := new(MockMetricsStore)

	var captured []byte
	mockObjects.On("PutArtifact", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).([]byte)
		}).Return(nil)
	mockMetrics.On("AddCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	proc := newTestProcessor(mockObjects, mockMetrics, Config{MaxRetries: 1})

	_, err := proc.ProcessPage(context.Background(), []stream.Record{
		eventRecord("evt-1", "u1", domain.EventTypePageView),
		eventRecord("evt-2", "u2", domain.EventTypeClick),
	})

	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(captured), "\n"), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		var event domain.EnrichedEvent
		assert.NoError(t, json.Unmarshal([]byte(line), &event))
		assert.NotEmpty(t, event.EventID)
	}
}
