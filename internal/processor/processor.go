package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/storage"
	"github.com/streamworks/eventstream/internal/stream"
)

// Result reports the outcome of one page-processing invocation
type Result struct {
	Processed     int
	Failed        int
	Duplicates    int
	PerTypeCounts map[domain.EventType]int64
}

// Config configures the batch processor
type Config struct {
	DedupEnabled  bool
	DedupCapacity int
	MaxRetries    int
}

// Processor consumes pages of log records, buffers them into a batch,
// persists the batch to object storage, and applies additive counter
// updates to the metrics store.
type Processor struct {
	objects       storage.ObjectStore
	metrics       storage.MetricsStore
	decoder       EventDecoder
	dedup         *recentSet
	retries       uint64
	retryInterval time.Duration
	now           func() time.Time
	log           *zap.Logger
}

// NewProcessor creates a new batch processor
func NewProcessor(objects storage.ObjectStore, metrics storage.MetricsStore, cfg Config, log *zap.Logger) *Processor {
	p := &Processor{
		objects:       objects,
		metrics:       metrics,
		decoder:       NewJSONEventDecoder(),
		retries:       uint64(cfg.MaxRetries),
		retryInterval: 500 * time.Millisecond,
		now:           time.Now,
		log:           log,
	}

	if cfg.DedupEnabled {
		p.dedup = newRecentSet(cfg.DedupCapacity)
	} else {
		log.Warn("Event deduplication disabled; redelivered records will inflate counters")
	}

	return p
}

// ProcessPage decodes one page of log records, persists the surviving batch
// as a single artifact, and issues one additive counter update per event
// type. A malformed record is counted as failed and never poisons the page;
// only persistence failures, after bounded retries, fail the invocation.
func (p *Processor) ProcessPage(ctx context.Context, records []stream.Record) (Result, error) {
	result := Result{
		PerTypeCounts: make(map[domain.EventType]int64),
	}

	// IDs first seen on this page; committed to the dedup set only after
	// persistence succeeds, so a failed page redelivers cleanly
	var pageIDs map[string]struct{}
	if p.dedup != nil {
		pageIDs = make(map[string]struct{}, len(records))
	}

	batch := make([]domain.EnrichedEvent, 0, len(records))
	for _, record := range records {
		event, err := p.decoder.Decode(record.Data)
		if err != nil {
			p.log.Warn("Failed to decode record",
				zap.String("partition_key", record.PartitionKey),
				zap.String("sequence", record.SequenceNumber),
				zap.Error(err))
			result.Failed++
			eventsFailed.Inc()
			continue
		}

		if p.dedup != nil {
			_, onPage := pageIDs[event.EventID]
			if onPage || p.dedup.Contains(event.EventID) {
				p.log.Debug("Skipping replayed record",
					zap.String("event_id", event.EventID))
				result.Duplicates++
				eventsDeduplicated.Inc()
				continue
			}
			pageIDs[event.EventID] = struct{}{}
		}

		batch = append(batch, event)
		result.PerTypeCounts[event.EventType]++
		result.Processed++
		eventsProcessed.Inc()
	}

	now := p.now().UTC()

	if len(batch) > 0 {
		if err := p.flushBatch(ctx, batch, now); err != nil {
			return result, fmt.Errorf("failed to persist batch: %w", err)
		}
		batchesFlushed.Inc()
	}

	if len(result.PerTypeCounts) > 0 {
		if err := p.updateCounters(ctx, result.PerTypeCounts, now); err != nil {
			return result, fmt.Errorf("failed to update counters: %w", err)
		}
	}

	for id := range pageIDs {
		p.dedup.Record(id)
	}

	return result, nil
}

// flushBatch writes the batch as one JSON-lines artifact. The key encodes
// the processing hour plus a random token, so concurrent invocations in the
// same hour never collide.
func (p *Processor) flushBatch(ctx context.Context, batch []domain.EnrichedEvent, now time.Time) error {
	var body bytes.Buffer
	for _, event := range batch {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventID, err)
		}
		body.Write(line)
		body.WriteByte('\n')
	}

	key := artifactKey(now)

	err := p.withRetry(ctx, "object store write", func() error {
		return p.objects.PutArtifact(ctx, key, body.Bytes())
	})
	if err != nil {
		return err
	}

	p.log.Info("Batch flushed",
		zap.String("key", key),
		zap.Int("events", len(batch)))

	return nil
}

func (p *Processor) updateCounters(ctx context.Context, counts map[domain.EventType]int64, now time.Time) error {
	date := now.Format("2006-01-02")
	hour := fmt.Sprintf("%02d:00", now.Hour())

	return p.withRetry(ctx, "counter update", func() error {
		return p.metrics.AddCounters(ctx, date, hour, counts)
	})
}

func (p *Processor) withRetry(ctx context.Context, label string, operation func() error) error {
	notify := func(err error, next time.Duration) {
		p.log.Warn("Persistence failed; retrying",
			zap.String("operation", label),
			zap.Error(err),
			zap.Duration("next_retry_in", next))
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.retryInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, p.retries), ctx)
	return backoff.RetryNotify(operation, policy, notify)
}

func artifactKey(now time.Time) string {
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d/events-%s-%s.jsonl",
		now.Year(), int(now.Month()), now.Day(), now.Hour(),
		now.Format("20060102150405"), uuid.NewString())
}
