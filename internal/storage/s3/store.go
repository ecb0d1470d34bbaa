package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/config"
)

// Store writes immutable batch artifacts to the S3 data lake
type Store struct {
	client *s3.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// NewStore creates a new S3 artifact store
func NewStore(ctx context.Context, awsCfg config.AWS, s3Cfg config.S3, log *zap.Logger) (*Store, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}

	var clientOpts []func(*s3.Options)

	// Configure for local development with LocalStack
	if awsCfg.Endpoint != "" {
		log.Info("Configuring S3 for local development",
			zap.String("endpoint", awsCfg.Endpoint))
		configOpts = append(configOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, clientOpts...)

	log.Info("S3 store created",
		zap.String("bucket", s3Cfg.Bucket),
		zap.String("prefix", s3Cfg.Prefix))

	return &Store{
		client: client,
		bucket: s3Cfg.Bucket,
		prefix: s3Cfg.Prefix,
		log:    log,
	}, nil
}

// PutArtifact writes one artifact under the configured prefix
func (s *Store) PutArtifact(ctx context.Context, key string, body []byte) error {
	fullKey := path.Join(s.prefix, key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(fullKey),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String("application/x-ndjson"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("failed to put artifact %s: %w", fullKey, err)
	}

	s.log.Info("Wrote batch artifact",
		zap.String("bucket", s.bucket),
		zap.String("key", fullKey),
		zap.Int("bytes", len(body)))

	return nil
}
