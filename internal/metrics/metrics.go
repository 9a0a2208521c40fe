// Package metrics registers the netsentry Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ChatSubmissions counts chat pipeline outcomes, labeled by terminal
	// state: rejected, short_circuited, completed, failed, timed_out.
	ChatSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "netsentry",
		Subsystem: "chat",
		Name:      "submissions_total",
		Help:      "Chat submissions by terminal pipeline state.",
	}, []string{"outcome"})

	// WebhookLatency observes round-trip time of webhook dispatches.
	WebhookLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "netsentry",
		Subsystem: "chat",
		Name:      "webhook_latency_seconds",
		Help:      "Latency of automation webhook dispatches.",
		Buckets:   prometheus.DefBuckets,
	})

	// RecordPagesFetched counts pages retrieved from the tabular-data API.
	RecordPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "netsentry",
		Subsystem: "records",
		Name:      "pages_fetched_total",
		Help:      "Pages fetched from the tabular-data API.",
	})

	// RecordFetchErrors counts failed tabular-data API requests.
	RecordFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "netsentry",
		Subsystem: "records",
		Name:      "fetch_errors_total",
		Help:      "Failed tabular-data API requests.",
	})

	// UploadValidations counts upload intake results, labeled accepted or
	// rejected.
	UploadValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "netsentry",
		Subsystem: "uploads",
		Name:      "validations_total",
		Help:      "Upload intake validations by result.",
	}, []string{"result"})
)

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
