// Package metrics records webhook and validation outcomes with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Webhook outcome label values.
const (
	OutcomeSuccess       = "success"
	OutcomeHTTPError     = "http_error"
	OutcomeRequestError  = "request_error"
	OutcomeNotConfigured = "not_configured"
)

// Recorder holds the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	webhookRequests    *prometheus.CounterVec
	webhookDuration    prometheus.Histogram
	validationFailures prometheus.Counter
}

// New creates a Recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		webhookRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskmessager",
			Name:      "webhook_requests_total",
			Help:      "Webhook send attempts by outcome.",
		}, []string{"outcome"}),
		webhookDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taskmessager",
			Name:      "webhook_duration_seconds",
			Help:      "Duration of webhook POST requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taskmessager",
			Name:      "validation_failures_total",
			Help:      "Task report requests rejected by validation.",
		}),
	}

	for _, c := range []prometheus.Collector{r.webhookRequests, r.webhookDuration, r.validationFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveWebhook records one send attempt whose request went out.
func (r *Recorder) ObserveWebhook(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.webhookRequests.WithLabelValues(outcome).Inc()
	r.webhookDuration.Observe(elapsed.Seconds())
}

// CountWebhook records a send attempt that failed before any request was
// made. It is not timed.
func (r *Recorder) CountWebhook(outcome string) {
	if r == nil {
		return
	}
	r.webhookRequests.WithLabelValues(outcome).Inc()
}

// ObserveValidationFailure records a rejected request.
func (r *Recorder) ObserveValidationFailure() {
	if r == nil {
		return
	}
	r.validationFailures.Inc()
}
