package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Image upload results recorded by ImageUploads.
const (
	UploadStored   = "stored"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

var (
	// EventsCreated counts successfully created events.
	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventhub_events_created_total",
		Help: "Total number of events created",
	})

	// EventLimitDenials counts event creations rejected by the daily limit.
	EventLimitDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventhub_event_limit_denials_total",
		Help: "Total number of event creations rejected by the per-user daily limit",
	})

	// ImageUploads counts image attachment attempts by result.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventhub_image_uploads_total",
		Help: "Total number of event image uploads by result",
	}, []string{"result"})

	// OrphanCleanupFailures counts upload files that could not be removed.
	OrphanCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventhub_image_cleanup_failures_total",
		Help: "Total number of image files that could not be deleted",
	})
)
