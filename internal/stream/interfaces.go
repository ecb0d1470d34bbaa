package stream

import "context"

// Record is one entry read from the ordered log. Records sharing a
// partition key are delivered in append order; records with different keys
// carry no relative ordering.
type Record struct {
	PartitionKey   string
	SequenceNumber string
	Data           []byte
}

// Appender appends serialized events to the ordered log. An append must be
// durably accepted before a nil error is returned.
type Appender interface {
	Append(ctx context.Context, partitionKey string, payload []byte) error
}

// Source reads pages of records from the shards of the ordered log
type Source interface {
	// ListShards returns the IDs of all shards in the stream
	ListShards(ctx context.Context) ([]string, error)

	// IteratorAfter returns an iterator positioned after the given sequence
	// number on a shard, or at the oldest record when sequence is empty.
	IteratorAfter(ctx context.Context, shardID, sequence string) (string, error)

	// Read returns up to limit records at the iterator position, plus the
	// next iterator. An empty next iterator means the shard is closed.
	Read(ctx context.Context, iterator string, limit int) ([]Record, string, error)
}
