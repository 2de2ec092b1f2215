package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBookingMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("booked")
	m.ObserveBooking("booked")
	m.ObserveBooking("slot_full")
	m.ObserveTransition("cancelled", "ok")
	m.ObserveCatalogReplacement("invalid_input")
	m.ObserveLockWait(0.002)

	if got := testutil.ToFloat64(m.bookingAttempts.WithLabelValues("booked")); got != 2 {
		t.Fatalf("booked = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.bookingAttempts.WithLabelValues("slot_full")); got != 1 {
		t.Fatalf("slot_full = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("cancelled", "ok")); got != 1 {
		t.Fatalf("transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.catalogReplacements.WithLabelValues("invalid_input")); got != 1 {
		t.Fatalf("replacements = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.lockWait); n != 1 {
		t.Fatalf("lock wait series = %d, want 1", n)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("booked")
	m.ObserveTransition("completed", "ok")
	m.ObserveLockWait(1)
	m.ObserveCatalogReplacement("ok")
}
