package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.ObserveWebhook(OutcomeSuccess, 10*time.Millisecond)
	r.ObserveWebhook(OutcomeSuccess, 20*time.Millisecond)
	r.ObserveWebhook(OutcomeHTTPError, 5*time.Millisecond)
	r.CountWebhook(OutcomeNotConfigured)
	r.CountWebhook(OutcomeRequestError)
	r.ObserveValidationFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.webhookRequests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.webhookRequests.WithLabelValues(OutcomeHTTPError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.webhookRequests.WithLabelValues(OutcomeNotConfigured)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.webhookRequests.WithLabelValues(OutcomeRequestError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.validationFailures))

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, mf := range families {
		if mf.GetName() == "taskmessager_webhook_duration_seconds" {
			samples = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(3), samples, "attempts without a request are not timed")
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveWebhook(OutcomeSuccess, time.Second)
		r.CountWebhook(OutcomeNotConfigured)
		r.ObserveValidationFailure()
	})
}
