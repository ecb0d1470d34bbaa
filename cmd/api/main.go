package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/streamworks/eventstream/docs"
	"github.com/streamworks/eventstream/internal/config"
	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/handler"
	"github.com/streamworks/eventstream/internal/logger"
	"github.com/streamworks/eventstream/internal/service"
	"github.com/streamworks/eventstream/internal/storage/dynamodb"
	"github.com/streamworks/eventstream/internal/stream/kinesis"
)

// @title EventStream Ingestion API
// @version 1.0
// @description API for submitting analytics events into the stream pipeline
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		if err := log.Sync(); err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting ingestion API",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	streamClient, err := kinesis.NewClient(ctx, cfg.AWS, cfg.Kinesis, log)
	if err != nil {
		log.Fatal("Failed to create Kinesis client", zap.Error(err))
	}

	metricsStore, err := dynamodb.NewStore(ctx, cfg.AWS, cfg.DynamoDB, log)
	if err != nil {
		log.Fatal("Failed to create DynamoDB store", zap.Error(err))
	}

	ingestService := service.NewIngestService(
		streamClient,
		domain.NewEnricher(),
		metricsStore,
		cfg.Kinesis.MaxAppendRetries,
		log,
	)

	h := handler.NewHandler(ingestService, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
