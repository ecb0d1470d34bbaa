package kinesis

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/config"
	"github.com/streamworks/eventstream/internal/stream"
)

// Client wraps the Kinesis data stream used as the pipeline's ordered log
type Client struct {
	client     *kinesis.Client
	streamName string
	log        *zap.Logger
}

// NewClient creates a new Kinesis client
func NewClient(ctx context.Context, awsCfg config.AWS, kinesisCfg config.Kinesis, log *zap.Logger) (*Client, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}

	var clientOpts []func(*kinesis.Options)

	// Configure for local development with LocalStack
	if awsCfg.Endpoint != "" {
		log.Info("Configuring Kinesis for local development",
			zap.String("endpoint", awsCfg.Endpoint))
		configOpts = append(configOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *kinesis.Options) {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
		})
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := kinesis.NewFromConfig(cfg, clientOpts...)

	log.Info("Kinesis client created",
		zap.String("region", awsCfg.Region),
		zap.String("stream_name", kinesisCfg.StreamName))

	return &Client{
		client:     client,
		streamName: kinesisCfg.StreamName,
		log:        log,
	}, nil
}

// Append puts one record onto the stream keyed by partitionKey
func (c *Client) Append(ctx context.Context, partitionKey string, payload []byte) error {
	_, err := c.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(c.streamName),
		Data:         payload,
		PartitionKey: aws.String(partitionKey),
	})
	if err != nil {
		return fmt.Errorf("failed to put record to stream: %w", err)
	}
	return nil
}

// ListShards returns the IDs of all shards in the stream
func (c *Client) ListShards(ctx context.Context) ([]string, error) {
	var shardIDs []string
	var nextToken *string

	for {
		input := &kinesis.ListShardsInput{}
		if nextToken != nil {
			input.NextToken = nextToken
		} else {
			input.StreamName = aws.String(c.streamName)
		}

		out, err := c.client.ListShards(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list shards: %w", err)
		}

		for _, shard := range out.Shards {
			shardIDs = append(shardIDs, aws.ToString(shard.ShardId))
		}

		if out.NextToken == nil {
			return shardIDs, nil
		}
		nextToken = out.NextToken
	}
}

// IteratorAfter returns a shard iterator positioned after sequence, or at
// the trim horizon when sequence is empty
func (c *Client) IteratorAfter(ctx context.Context, shardID, sequence string) (string, error) {
	input := &kinesis.GetShardIteratorInput{
		StreamName: aws.String(c.streamName),
		ShardId:    aws.String(shardID),
	}

	if sequence == "" {
		input.ShardIteratorType = types.ShardIteratorTypeTrimHorizon
	} else {
		input.ShardIteratorType = types.ShardIteratorTypeAfterSequenceNumber
		input.StartingSequenceNumber = aws.String(sequence)
	}

	out, err := c.client.GetShardIterator(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to get shard iterator: %w", err)
	}
	return aws.ToString(out.ShardIterator), nil
}

// Read returns up to limit records at the iterator position
func (c *Client) Read(ctx context.Context, iterator string, limit int) ([]stream.Record, string, error) {
	out, err := c.client.GetRecords(ctx, &kinesis.GetRecordsInput{
		ShardIterator: aws.String(iterator),
		Limit:         aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get records: %w", err)
	}

	records := make([]stream.Record, 0, len(out.Records))
	for _, r := range out.Records {
		records = append(records, stream.Record{
			PartitionKey:   aws.ToString(r.PartitionKey),
			SequenceNumber: aws.ToString(r.SequenceNumber),
			Data:           r.Data,
		})
	}

	return records, aws.ToString(out.NextShardIterator), nil
}
