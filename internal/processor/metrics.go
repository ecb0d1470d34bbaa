package processor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstream_events_processed_total",
		Help: "Number of log records decoded and accumulated into batches",
	})

	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstream_events_failed_total",
		Help: "Number of log records that failed to decode",
	})

	eventsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstream_events_deduplicated_total",
		Help: "Number of replayed records suppressed by the recently-seen set",
	})

	batchesFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstream_batches_flushed_total",
		Help: "Number of batch artifacts written to object storage",
	})
)
