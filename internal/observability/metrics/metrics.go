package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead pipeline.
type LeadMetrics struct {
	leadsTotal     *prometheus.CounterVec
	crmTotal       *prometheus.CounterVec
	remoteTotal    *prometheus.CounterVec
	processLatency *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbridge",
			Subsystem: "leads",
			Name:      "processed_total",
			Help:      "Inbound notifications by transport and outcome",
		}, []string{"transport", "status"}),
		crmTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbridge",
			Subsystem: "crm",
			Name:      "submissions_total",
			Help:      "CRM submissions by outcome",
		}, []string{"status"}),
		remoteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbridge",
			Subsystem: "classifier",
			Name:      "remote_total",
			Help:      "Remote property page classifications by outcome",
		}, []string{"outcome"}),
		processLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadbridge",
			Subsystem: "leads",
			Name:      "process_seconds",
			Help:      "End-to-end latency of lead processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsTotal, m.crmTotal, m.remoteTotal, m.processLatency)
	return m
}

func (m *LeadMetrics) ObserveLead(transport, status string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(transport, status).Inc()
}

func (m *LeadMetrics) ObserveSubmission(ok bool) {
	if m == nil {
		return
	}
	status := "error"
	if ok {
		status = "ok"
	}
	m.crmTotal.WithLabelValues(status).Inc()
}

// ObserveRemote records a remote classification outcome: hit, miss or error.
func (m *LeadMetrics) ObserveRemote(outcome string) {
	if m == nil {
		return
	}
	m.remoteTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveLatency(transport string, seconds float64) {
	if m == nil {
		return
	}
	m.processLatency.WithLabelValues(transport).Observe(seconds)
}
