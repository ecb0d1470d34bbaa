package service

import (
	"context"

	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/dto"
)

// EventIngestor defines the interface for ingestion operations
type EventIngestor interface {
	IngestEvent(ctx context.Context, raw domain.RawEvent) (string, error)
	IngestBulk(ctx context.Context, raws []domain.RawEvent) ([]string, []string)
	HourlyMetrics(ctx context.Context, date, hour string) (*dto.HourlyMetricsResponse, error)
}
