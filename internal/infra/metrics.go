package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts client activity on a private registry so several clients
// in one process never collide on global collectors.
type Metrics struct {
	registry *prometheus.Registry

	txSubmitted      *prometheus.CounterVec
	readOnlyRejected *prometheus.CounterVec
	verifications    *prometheus.CounterVec
	profileRequests  *prometheus.CounterVec
	gasPadded        prometheus.Histogram
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		txSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tuli",
			Name:      "transactions_submitted_total",
			Help:      "Transactions sent to the ledger, by contract method.",
		}, []string{"method"}),
		readOnlyRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tuli",
			Name:      "read_only_rejections_total",
			Help:      "Mutating calls refused because the client has no signer.",
		}, []string{"method"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tuli",
			Name:      "verifications_total",
			Help:      "Content verifications, by outcome.",
		}, []string{"outcome"}),
		profileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tuli",
			Name:      "profile_requests_total",
			Help:      "User-profile service requests, by outcome.",
		}, []string{"outcome"}),
		gasPadded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tuli",
			Name:      "gas_limit",
			Help:      "Padded gas limits of submitted transactions.",
			Buckets:   prometheus.ExponentialBuckets(21_000, 2, 10),
		}),
	}
	m.registry.MustRegister(m.txSubmitted, m.readOnlyRejected, m.verifications, m.profileRequests, m.gasPadded)
	return m
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) TxSubmitted(method string, gasLimit uint64) {
	m.txSubmitted.WithLabelValues(method).Inc()
	m.gasPadded.Observe(float64(gasLimit))
}

func (m *Metrics) ReadOnlyRejected(method string) {
	m.readOnlyRejected.WithLabelValues(method).Inc()
}

// Verification outcomes: "verified", "mismatch", "error".
func (m *Metrics) Verification(outcome string) {
	m.verifications.WithLabelValues(outcome).Inc()
}

// ProfileRequest outcomes: "ok", "rejected", "api_error", "network_error", "empty".
func (m *Metrics) ProfileRequest(outcome string) {
	m.profileRequests.WithLabelValues(outcome).Inc()
}

// MetricsSnapshot is a point-in-time view of all counters, keyed by
// "<metric>{<label>}".
type MetricsSnapshot struct {
	Counters  map[string]float64
	Timestamp time.Time
}

// Snapshot gathers the registry into plain values.
func (m *Metrics) Snapshot() (MetricsSnapshot, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return MetricsSnapshot{}, err
	}
	snap := MetricsSnapshot{Counters: make(map[string]float64), Timestamp: time.Now()}
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			name := fam.GetName()
			for _, lp := range metric.GetLabel() {
				name += "{" + lp.GetValue() + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				snap.Counters[name] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				snap.Counters[name+"_count"] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return snap, nil
}
