package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/config"
	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/storage"
)

const (
	metricsKeyPrefix = "METRICS#"
	summaryKeyPrefix = "SUMMARY#"
	shardKeyPrefix   = "SHARD#"
)

// Store implements the metrics and checkpoint stores on DynamoDB.
// Counter rows use (pk "METRICS#<date>", sk "<hour>#<event_type>"),
// summary rows (pk "SUMMARY#<date>", sk "<hour>"), checkpoint rows
// (pk "SHARD#<stream>", sk "<shard_id>").
type Store struct {
	client          *dynamodb.Client
	metricsTable    string
	checkpointTable string
	log             *zap.Logger
}

// NewStore creates a new DynamoDB store
func NewStore(ctx context.Context, awsCfg config.AWS, ddbCfg config.DynamoDB, log *zap.Logger) (*Store, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}

	var clientOpts []func(*dynamodb.Options)

	// Configure for local development with LocalStack
	if awsCfg.Endpoint != "" {
		log.Info("Configuring DynamoDB for local development",
			zap.String("endpoint", awsCfg.Endpoint))
		configOpts = append(configOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
		})
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, clientOpts...)

	log.Info("DynamoDB store created",
		zap.String("metrics_table", ddbCfg.MetricsTable),
		zap.String("checkpoint_table", ddbCfg.CheckpointTable))

	return &Store{
		client:          client,
		metricsTable:    ddbCfg.MetricsTable,
		checkpointTable: ddbCfg.CheckpointTable,
		log:             log,
	}, nil
}

// AddCounters applies one atomic additive update per event type. Concurrent
// invocations interleave safely; there is no read-modify-write.
func (s *Store) AddCounters(ctx context.Context, date, hour string, counts map[domain.EventType]int64) error {
	now := time.Now().UTC().Format(time.RFC3339)

	for eventType, count := range counts {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(s.metricsTable),
			Key: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: metricsKeyPrefix + date},
				"sk": &types.AttributeValueMemberS{Value: fmt.Sprintf("%s#%s", hour, eventType)},
			},
			UpdateExpression: aws.String("ADD event_count :c SET updated_at = :t, event_type = :e"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":c": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", count)},
				":t": &types.AttributeValueMemberS{Value: now},
				":e": &types.AttributeValueMemberS{Value: string(eventType)},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to update counter for %s: %w", eventType, err)
		}
	}

	return nil
}

// QueryHour returns all counters recorded for the given date and hour
func (s *Store) QueryHour(ctx context.Context, date, hour string) ([]storage.MetricCounter, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.metricsTable),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :hr)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: metricsKeyPrefix + date},
			":hr": &types.AttributeValueMemberS{Value: hour + "#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query counters for %s %s: %w", date, hour, err)
	}

	counters := make([]storage.MetricCounter, 0, len(out.Items))
	for _, item := range out.Items {
		var row counterRecord
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal counter row: %w", err)
		}

		counter := storage.MetricCounter{
			Date:      date,
			Hour:      hour,
			EventType: domain.EventType(row.EventType),
			Count:     row.EventCount,
		}
		if counter.EventType == "" {
			// Older rows carry the type only in the sort key
			if idx := strings.LastIndex(row.SK, "#"); idx >= 0 {
				counter.EventType = domain.EventType(row.SK[idx+1:])
			}
		}
		if ts, err := time.Parse(time.RFC3339, row.UpdatedAt); err == nil {
			counter.UpdatedAt = ts
		}

		counters = append(counters, counter)
	}

	return counters, nil
}

// PutSummary writes an aggregation summary, replacing any prior value for
// the same date and hour
func (s *Store) PutSummary(ctx context.Context, summary domain.AggregationSummary) error {
	eventTypes := make(map[string]int64, len(summary.EventTypes))
	for eventType, count := range summary.EventTypes {
		eventTypes[string(eventType)] = count
	}

	item, err := attributevalue.MarshalMap(summaryRecord{
		PK:          summaryKeyPrefix + summary.Date,
		SK:          summary.Hour,
		TotalEvents: summary.TotalEvents,
		EventTypes:  eventTypes,
		Anomalies:   summary.Anomalies,
		GeneratedAt: summary.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.metricsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put summary for %s %s: %w", summary.Date, summary.Hour, err)
	}

	return nil
}

// Get returns the last checkpointed sequence number for a shard
func (s *Store) Get(ctx context.Context, streamName, shardID string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.checkpointTable),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: shardKeyPrefix + streamName},
			"sk": &types.AttributeValueMemberS{Value: shardID},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get checkpoint for shard %s: %w", shardID, err)
	}
	if out.Item == nil {
		return "", nil
	}

	var row checkpointRecord
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return "", fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return row.Sequence, nil
}

// Put records the latest processed sequence number for a shard
func (s *Store) Put(ctx context.Context, streamName, shardID, sequence string) error {
	item, err := attributevalue.MarshalMap(checkpointRecord{
		PK:        shardKeyPrefix + streamName,
		SK:        shardID,
		Sequence:  sequence,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.checkpointTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put checkpoint for shard %s: %w", shardID, err)
	}

	return nil
}

type counterRecord struct {
	PK         string `dynamodbav:"pk"`
	SK         string `dynamodbav:"sk"`
	EventCount int64  `dynamodbav:"event_count"`
	EventType  string `dynamodbav:"event_type"`
	UpdatedAt  string `dynamodbav:"updated_at"`
}

type summaryRecord struct {
	PK          string           `dynamodbav:"pk"`
	SK          string           `dynamodbav:"sk"`
	TotalEvents int64            `dynamodbav:"total_events"`
	EventTypes  map[string]int64 `dynamodbav:"event_types"`
	Anomalies   int              `dynamodbav:"anomalies"`
	GeneratedAt string           `dynamodbav:"generated_at"`
}

type checkpointRecord struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	Sequence  string `dynamodbav:"sequence"`
	UpdatedAt string `dynamodbav:"updated_at"`
}
