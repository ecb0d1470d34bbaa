package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/storage"
	"github.com/streamworks/eventstream/internal/stream"
)

// PageProcessor handles one page of log records
type PageProcessor interface {
	ProcessPage(ctx context.Context, records []stream.Record) (Result, error)
}

// ConsumerConfig configures the shard consumer
type ConsumerConfig struct {
	StreamName   string
	PageLimit    int
	PollInterval time.Duration
}

// Consumer drives the batch processor against the shards of the ordered
// log. Each shard is consumed by exactly one goroutine, preserving
// per-partition-key ordering; different shards run fully in parallel.
type Consumer struct {
	source      stream.Source
	processor   PageProcessor
	checkpoints storage.CheckpointStore
	config      ConsumerConfig
	log         *zap.Logger
}

// NewConsumer creates a new shard consumer
func NewConsumer(source stream.Source, processor PageProcessor, checkpoints storage.CheckpointStore, config ConsumerConfig, log *zap.Logger) *Consumer {
	return &Consumer{
		source:      source,
		processor:   processor,
		checkpoints: checkpoints,
		config:      config,
		log:         log,
	}
}

// Run lists the stream's shards and consumes each on its own goroutine
// until the context is cancelled or every shard is closed
func (c *Consumer) Run(ctx context.Context) error {
	shards, err := c.source.ListShards(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shards: %w", err)
	}
	if len(shards) == 0 {
		return fmt.Errorf("stream %s has no shards", c.config.StreamName)
	}

	c.log.Info("Starting shard workers",
		zap.String("stream", c.config.StreamName),
		zap.Int("shards", len(shards)))

	var wg sync.WaitGroup
	for _, shardID := range shards {
		wg.Add(1)
		go func(shardID string) {
			defer wg.Done()
			c.consumeShard(ctx, shardID)
		}(shardID)
	}
	wg.Wait()

	return nil
}

// consumeShard reads pages from one shard in order. A page that fails to
// persist is not checkpointed, so it is re-read on the next iterator
// refresh; redelivery is handled by the processor's dedup set.
func (c *Consumer) consumeShard(ctx context.Context, shardID string) {
	log := c.log.With(zap.String("shard_id", shardID))

	lastSequence, err := c.checkpoints.Get(ctx, c.config.StreamName, shardID)
	if err != nil {
		log.Warn("Failed to read checkpoint; starting from trim horizon", zap.Error(err))
		lastSequence = ""
	}

	iterator, ok := c.acquireIterator(ctx, shardID, lastSequence, log)
	if !ok {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("Shard worker shutting down")
			return
		default:
		}

		records, next, err := c.source.Read(ctx, iterator, c.config.PageLimit)
		if err != nil {
			log.Error("Failed to read from shard", zap.Error(err))
			if !c.sleep(ctx) {
				return
			}
			// Iterators expire; reacquire from the last checkpoint
			iterator, ok = c.acquireIterator(ctx, shardID, lastSequence, log)
			if !ok {
				return
			}
			continue
		}

		if len(records) > 0 {
			result, err := c.processor.ProcessPage(ctx, records)
			if err != nil {
				log.Error("Page processing failed; page will be redelivered",
					zap.Int("records", len(records)),
					zap.Error(err))
				if !c.sleep(ctx) {
					return
				}
				iterator, ok = c.acquireIterator(ctx, shardID, lastSequence, log)
				if !ok {
					return
				}
				continue
			}

			log.Info("Page processed",
				zap.Int("processed", result.Processed),
				zap.Int("failed", result.Failed),
				zap.Int("duplicates", result.Duplicates))

			lastSequence = records[len(records)-1].SequenceNumber
			if err := c.checkpoints.Put(ctx, c.config.StreamName, shardID, lastSequence); err != nil {
				log.Error("Failed to store checkpoint", zap.Error(err))
			}
		}

		if next == "" {
			log.Info("Shard closed")
			return
		}
		iterator = next

		if len(records) == 0 {
			if !c.sleep(ctx) {
				return
			}
		}
	}
}

func (c *Consumer) acquireIterator(ctx context.Context, shardID, sequence string, log *zap.Logger) (string, bool) {
	for {
		iterator, err := c.source.IteratorAfter(ctx, shardID, sequence)
		if err == nil {
			return iterator, true
		}
		log.Error("Failed to acquire shard iterator", zap.Error(err))
		if !c.sleep(ctx) {
			return "", false
		}
	}
}

func (c *Consumer) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.config.PollInterval):
		return true
	}
}
