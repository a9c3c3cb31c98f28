package facility

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

func TestDispatchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := NewRegistry(m)

	if err := r.Create("T", KindCustom, &captureWriter{}, level.Warn, format.VerbNone); err != nil {
		t.Fatal(err)
	}
	if err := r.Enable("T"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.activeGauge); got != 1 {
		t.Errorf("active gauge = %v, want 1", got)
	}

	dispatch(r, level.Event, "delivered")
	dispatch(r, level.Debug, "suppressed")

	if got := testutil.ToFloat64(m.dispatched.WithLabelValues("T")); got != 1 {
		t.Errorf("dispatched = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.suppressed.WithLabelValues("T")); got != 1 {
		t.Errorf("suppressed = %v, want 1", got)
	}

	if err := r.Disable("T"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.activeGauge); got != 0 {
		t.Errorf("active gauge after disable = %v, want 0", got)
	}
}

func TestPlaceholderDispatchNotCounted(t *testing.T) {
	// An active placeholder has nowhere to write; skipping it is not a
	// threshold suppression.
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := NewRegistry(m)

	if err := r.CreatePlaceholder("P"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetDefault("P"); err != nil {
		t.Fatal(err)
	}

	dispatch(r, level.Event, "dropped")

	if got := testutil.ToFloat64(m.suppressed.WithLabelValues("P")); got != 0 {
		t.Errorf("suppressed = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.dispatched.WithLabelValues("P")); got != 0 {
		t.Errorf("dispatched = %v, want 0", got)
	}
}
