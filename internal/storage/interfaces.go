package storage

import (
	"context"
	"time"

	"github.com/streamworks/eventstream/internal/domain"
)

// MetricCounter is one row of the per-hour counter table, keyed by
// (date, hour, event type). Counts only ever grow.
type MetricCounter struct {
	Date      string
	Hour      string
	EventType domain.EventType
	Count     int64
	UpdatedAt time.Time
}

// ObjectStore persists immutable batch artifacts in durable object storage
type ObjectStore interface {
	// PutArtifact writes one artifact under the given key, relative to the
	// store's configured prefix
	PutArtifact(ctx context.Context, key string, body []byte) error
}

// MetricsStore is the durable aggregate state mutated by the batch
// processor and read by the aggregator
type MetricsStore interface {
	// AddCounters applies one additive update per event type for the given
	// date and hour. Updates are atomic add-N operations, safe under
	// concurrent invocations.
	AddCounters(ctx context.Context, date, hour string, counts map[domain.EventType]int64) error

	// QueryHour returns all counters recorded for the given date and hour
	QueryHour(ctx context.Context, date, hour string) ([]MetricCounter, error)

	// PutSummary writes an aggregation summary, overwriting any prior value
	// for the same date and hour
	PutSummary(ctx context.Context, summary domain.AggregationSummary) error
}

// CheckpointStore records per-shard consumer progress
type CheckpointStore interface {
	// Get returns the last checkpointed sequence number for a shard, or the
	// empty string when no checkpoint exists
	Get(ctx context.Context, streamName, shardID string) (string, error)

	// Put records the latest processed sequence number for a shard
	Put(ctx context.Context, streamName, shardID, sequence string) error
}
