package alert

import (
	"context"

	"github.com/streamworks/eventstream/internal/domain"
)

// Dispatcher fans anomaly alerts out to notification channels. Dispatch
// failures are never fatal to an aggregation run; the caller logs and
// swallows them.
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []domain.AnomalyAlert) error
}
