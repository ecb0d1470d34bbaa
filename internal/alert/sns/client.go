package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/config"
	"github.com/streamworks/eventstream/internal/domain"
)

// Client publishes anomaly alerts to an SNS topic
type Client struct {
	client      *sns.Client
	topicARN    string
	minSeverity domain.Severity
	log         *zap.Logger
}

// NewClient creates a new SNS alert dispatcher
func NewClient(ctx context.Context, awsCfg config.AWS, snsCfg config.SNS, minSeverity domain.Severity, log *zap.Logger) (*Client, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}

	var clientOpts []func(*sns.Options)

	// Configure for local development with LocalStack
	if awsCfg.Endpoint != "" {
		log.Info("Configuring SNS for local development",
			zap.String("endpoint", awsCfg.Endpoint))
		configOpts = append(configOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
		})
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sns.NewFromConfig(cfg, clientOpts...)

	log.Info("SNS dispatcher created",
		zap.String("topic_arn", snsCfg.TopicARN),
		zap.String("min_severity", string(minSeverity)))

	return &Client{
		client:      client,
		topicARN:    snsCfg.TopicARN,
		minSeverity: minSeverity,
		log:         log,
	}, nil
}

// Dispatch publishes one message per alert at or above the configured
// minimum severity. The subject line summarizes type and magnitude.
func (c *Client) Dispatch(ctx context.Context, alerts []domain.AnomalyAlert) error {
	var lastErr error

	for _, a := range alerts {
		if !a.Severity.AtLeast(c.minSeverity) {
			c.log.Info("Skipping alert below minimum severity",
				zap.String("metric_name", a.MetricName),
				zap.String("severity", string(a.Severity)))
			continue
		}

		body, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			lastErr = fmt.Errorf("failed to marshal alert: %w", err)
			continue
		}

		subject := fmt.Sprintf("EventStream Alert: %s (%.1fx, %s)", a.MetricName, a.Score, a.Severity)

		_, err = c.client.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(c.topicARN),
			Subject:  aws.String(subject),
			Message:  aws.String(string(body)),
		})
		if err != nil {
			c.log.Error("Failed to publish alert",
				zap.String("metric_name", a.MetricName),
				zap.Error(err))
			lastErr = fmt.Errorf("failed to publish alert: %w", err)
			continue
		}

		c.log.Info("Alert dispatched",
			zap.String("metric_name", a.MetricName),
			zap.String("severity", string(a.Severity)))
	}

	return lastErr
}
