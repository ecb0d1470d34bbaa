package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/streamworks/eventstream/internal/aggregator"
	"github.com/streamworks/eventstream/internal/alert"
	"github.com/streamworks/eventstream/internal/alert/sns"
	"github.com/streamworks/eventstream/internal/config"
	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/logger"
	"github.com/streamworks/eventstream/internal/storage/dynamodb"
)

func main() {
	once := flag.Bool("once", false, "run one aggregation pass and exit")
	flag.Parse()

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

	log.Info("Starting aggregator",
		zap.String("environment", cfg.Service.Environment),
		zap.Float64("anomaly_threshold", cfg.Aggregator.AnomalyThreshold))

	ctx := context.Background()

	metricsStore, err := dynamodb.NewStore(ctx, cfg.AWS, cfg.DynamoDB, log)
	if err != nil {
		log.Fatal("Failed to create DynamoDB store", zap.Error(err))
	}

	// A missing topic means alerts are only recorded in the summary
	var dispatcher alert.Dispatcher
	if cfg.SNS.TopicARN != "" {
		snsClient, err := sns.NewClient(ctx, cfg.AWS, cfg.SNS,
			domain.ParseSeverity(cfg.Aggregator.MinSeverity), log)
		if err != nil {
			log.Fatal("Failed to create SNS dispatcher", zap.Error(err))
		}
		dispatcher = snsClient
	} else {
		log.Info("No alert topic configured; alerts will not be dispatched")
	}

	agg := aggregator.NewAggregator(metricsStore, dispatcher, aggregator.Config{
		AnomalyThreshold: cfg.Aggregator.AnomalyThreshold,
	}, log)

	if *once {
		if _, _, err := agg.Run(ctx); err != nil {
			log.Fatal("Aggregation failed", zap.Error(err))
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// One run per hour; a failed run is not retried in a tight loop, it
	// waits for the next scheduled trigger
	for {
		wait := time.Until(time.Now().UTC().Truncate(time.Hour).Add(time.Hour))
		log.Info("Waiting for next aggregation window", zap.Duration("wait", wait))

		select {
		case <-sigChan:
			log.Info("Shutting down aggregator")
			return
		case <-time.After(wait):
			if _, _, err := agg.Run(ctx); err != nil {
				log.Error("Aggregation run failed; will retry next hour", zap.Error(err))
			}
		}
	}
}
