package infra

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.TxSubmitted("mint", 110_000)
	m.TxSubmitted("mint", 110_000)
	m.TxSubmitted("setAsk", 55_000)
	m.ReadOnlyRejected("burn")
	m.Verification("verified")
	m.Verification("mismatch")
	m.ProfileRequest("ok")

	if got := testutil.ToFloat64(m.txSubmitted.WithLabelValues("mint")); got != 2 {
		t.Errorf("mint submissions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.readOnlyRejected.WithLabelValues("burn")); got != 1 {
		t.Errorf("burn rejections = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.verifications); got != 2 {
		t.Errorf("verification series = %d, want 2", got)
	}
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.TxSubmitted("burn", 22_000)
	m.ProfileRequest("api_error")

	snap, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Counters["tuli_transactions_submitted_total{burn}"] != 1 {
		t.Errorf("unexpected snapshot: %v", snap.Counters)
	}
	if snap.Counters["tuli_profile_requests_total{api_error}"] != 1 {
		t.Errorf("unexpected snapshot: %v", snap.Counters)
	}
	if snap.Counters["tuli_gas_limit_count"] != 1 {
		t.Errorf("gas histogram count = %v", snap.Counters["tuli_gas_limit_count"])
	}
	if snap.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestMetrics_Independent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ReadOnlyRejected("mint")
	if got := testutil.ToFloat64(b.readOnlyRejected.WithLabelValues("mint")); got != 0 {
		t.Errorf("registries leaked: %v", got)
	}
}
