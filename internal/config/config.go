package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Service holds general service settings
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" default:"dev"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

// AWS holds settings shared by every AWS client. Endpoint is only set for
// local development against LocalStack.
type AWS struct {
	Region   string `envconfig:"AWS_REGION" default:"us-east-1"`
	Endpoint string `envconfig:"AWS_ENDPOINT"`
}

// Kinesis holds the ordered log settings
type Kinesis struct {
	StreamName       string `envconfig:"KINESIS_STREAM_NAME" required:"true"`
	MaxAppendRetries int    `envconfig:"KINESIS_MAX_APPEND_RETRIES" default:"4"`
}

// S3 holds the data lake settings
type S3 struct {
	Bucket string `envconfig:"DATA_LAKE_BUCKET" required:"true"`
	Prefix string `envconfig:"DATA_PREFIX" default:"raw"`
}

// DynamoDB holds the metrics store settings. CheckpointTable falls back to
// the metrics table when unset.
type DynamoDB struct {
	MetricsTable    string `envconfig:"METRICS_TABLE" required:"true"`
	CheckpointTable string `envconfig:"CHECKPOINT_TABLE"`
}

// SNS holds the alert sink settings. An empty topic ARN disables dispatch.
type SNS struct {
	TopicARN string `envconfig:"ALERT_TOPIC_ARN"`
}

// Processor holds batch processor settings
type Processor struct {
	MaxBatchSize      int    `envconfig:"MAX_BATCH_SIZE" default:"500"`
	PollIntervalMS    int    `envconfig:"PROCESSOR_POLL_INTERVAL_MS" default:"1000"`
	MaxPersistRetries int    `envconfig:"PROCESSOR_MAX_PERSIST_RETRIES" default:"4"`
	DedupEnabled      bool   `envconfig:"PROCESSOR_DEDUP_ENABLED" default:"true"`
	DedupCapacity     int    `envconfig:"PROCESSOR_DEDUP_CAPACITY" default:"10000"`
	HealthCheckPort   string `envconfig:"PROCESSOR_HEALTH_CHECK_PORT" default:"8081"`
}

// Aggregator holds anomaly detection settings. LookbackHours is accepted for
// forward compatibility; the day-over-day rule does not read it.
type Aggregator struct {
	AnomalyThreshold float64 `envconfig:"ANOMALY_THRESHOLD" default:"2.0"`
	LookbackHours    int     `envconfig:"ANOMALY_LOOKBACK_HOURS" default:"168"`
	MinSeverity      string  `envconfig:"ALERT_MIN_SEVERITY" default:"LOW"`
}

// Config is the full pipeline configuration, constructed once at process
// start and passed by reference into each component.
type Config struct {
	Service    Service
	AWS        AWS
	Kinesis    Kinesis
	S3         S3
	DynamoDB   DynamoDB
	SNS        SNS
	Processor  Processor
	Aggregator Aggregator
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.DynamoDB.CheckpointTable == "" {
		cfg.DynamoDB.CheckpointTable = cfg.DynamoDB.MetricsTable
	}

	return &cfg, nil
}
