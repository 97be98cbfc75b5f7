package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)

	m.ObserveLead("webhook", "submitted")
	m.ObserveLead("webhook", "submitted")
	m.ObserveLead("email", "rejected")
	m.ObserveSubmission(true)
	m.ObserveSubmission(false)
	m.ObserveRemote("hit")
	m.ObserveLatency("webhook", 0.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.leadsTotal.WithLabelValues("webhook", "submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leadsTotal.WithLabelValues("email", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.crmTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.crmTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteTotal.WithLabelValues("hit")))
}

func TestLeadMetricsLatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	m.ObserveLatency("email", 0.5)
	m.ObserveLatency("email", 1.5)

	families, err := reg.Gather()
	require.NoError(t, err)

	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "leadbridge_leads_process_seconds" {
			require.Len(t, mf.GetMetric(), 1)
			hist = mf.GetMetric()[0].GetHistogram()
		}
	}
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 2.0, hist.GetSampleSum(), 1e-9)
}

func TestLeadMetricsNilSafe(t *testing.T) {
	var m *LeadMetrics
	m.ObserveLead("webhook", "submitted")
	m.ObserveSubmission(true)
	m.ObserveRemote("error")
	m.ObserveLatency("webhook", 0.1)
}
