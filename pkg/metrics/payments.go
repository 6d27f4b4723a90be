package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records intent lifecycle and sweep activity.
type PaymentMetrics struct {
	intentsCreated *prometheus.CounterVec
	intentsClosed  *prometheus.CounterVec
	sweepDuration  prometheus.Histogram
	sweepFailures  prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Payment intents created, by provider.",
	}, []string{"provider"})
	closed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_closed_total",
		Help: "Terminal transitions applied, by provider and status.",
	}, []string{"provider", "status"})
	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconcile_sweep_duration_seconds",
		Help:    "Duration of background reconciliation sweeps.",
		Buckets: prometheus.DefBuckets,
	})
	sweepFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_sweep_item_failures_total",
		Help: "Per-intent verification failures during sweeps.",
	})
	reg.MustRegister(created, closed, sweepDuration, sweepFailures)
	return &PaymentMetrics{
		intentsCreated: created,
		intentsClosed:  closed,
		sweepDuration:  sweepDuration,
		sweepFailures:  sweepFailures,
	}
}

// IncCreated counts one intent created with the provider.
func (m *PaymentMetrics) IncCreated(provider string) {
	if m == nil || m.intentsCreated == nil {
		return
	}
	m.intentsCreated.WithLabelValues(provider).Inc()
}

// IncClosed counts one terminal transition.
func (m *PaymentMetrics) IncClosed(provider, status string) {
	if m == nil || m.intentsClosed == nil {
		return
	}
	m.intentsClosed.WithLabelValues(provider, status).Inc()
}

// ObserveSweep records the duration of one sweep.
func (m *PaymentMetrics) ObserveSweep(d time.Duration) {
	if m == nil || m.sweepDuration == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}

// IncSweepFailure counts one failed per-intent verification inside a sweep.
func (m *PaymentMetrics) IncSweepFailure() {
	if m == nil || m.sweepFailures == nil {
		return
	}
	m.sweepFailures.Inc()
}
