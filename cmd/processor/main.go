package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/config"
	"github.com/streamworks/eventstream/internal/logger"
	"github.com/streamworks/eventstream/internal/processor"
	"github.com/streamworks/eventstream/internal/storage/dynamodb"
	"github.com/streamworks/eventstream/internal/storage/s3"
	"github.com/streamworks/eventstream/internal/stream/kinesis"
)

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

	log.Info("Starting batch processor",
		zap.String("environment", cfg.Service.Environment),
		zap.String("stream", cfg.Kinesis.StreamName))

	ctx := context.Background()

	streamClient, err := kinesis.NewClient(ctx, cfg.AWS, cfg.Kinesis, log)
	if err != nil {
		log.Fatal("Failed to create Kinesis client", zap.Error(err))
	}

	objectStore, err := s3.NewStore(ctx, cfg.AWS, cfg.S3, log)
	if err != nil {
		log.Fatal("Failed to create S3 store", zap.Error(err))
	}

	metricsStore, err := dynamodb.NewStore(ctx, cfg.AWS, cfg.DynamoDB, log)
	if err != nil {
		log.Fatal("Failed to create DynamoDB store", zap.Error(err))
	}

	proc := processor.NewProcessor(objectStore, metricsStore, processor.Config{
		DedupEnabled:  cfg.Processor.DedupEnabled,
		DedupCapacity: cfg.Processor.DedupCapacity,
		MaxRetries:    cfg.Processor.MaxPersistRetries,
	}, log)

	consumer := processor.NewConsumer(streamClient, proc, metricsStore, processor.ConsumerConfig{
		StreamName:   cfg.Kinesis.StreamName,
		PageLimit:    cfg.Processor.MaxBatchSize,
		PollInterval: time.Duration(cfg.Processor.PollIntervalMS) * time.Millisecond,
	}, log)

	// Health and instrumentation endpoint
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.Handle("/metrics", promhttp.Handler())

		addr := ":" + cfg.Processor.HealthCheckPort
		log.Info("Health server starting", zap.String("address", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Health server error", zap.Error(err))
		}
	}()

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(consumerCtx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Shutting down processor gracefully")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			log.Fatal("Consumer error", zap.Error(err))
		}
		log.Info("All shards closed; exiting")
	}
}
