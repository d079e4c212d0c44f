package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	r.RecordProcessed("put")
	r.StepperInvoked("delta", "x")
	r.WriterFlushed("csv", "ok", 128)
	if r.Handler() != nil {
		t.Fatalf("expected nil Handler on nil Recorder")
	}
}

func TestRecorderCountsAcrossLabels(t *testing.T) {
	r := New()
	r.RecordProcessed("put")
	r.RecordProcessed("put")
	r.RecordProcessed("filter")
	r.StepperInvoked("delta", "x")
	r.WriterFlushed("csv", "ok", 256)
	r.WriterFlushed("csv", "error", 0)

	if got := testutil.ToFloat64(r.recordsProcessed.WithLabelValues("put")); got != 2 {
		t.Fatalf("put count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.recordsProcessed.WithLabelValues("filter")); got != 1 {
		t.Fatalf("filter count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.writerFlushes.WithLabelValues("csv", "ok")); got != 1 {
		t.Fatalf("csv/ok flush count = %v, want 1", got)
	}
}

func TestNewBuildsIndependentRegistries(t *testing.T) {
	a := New()
	b := New()
	a.RecordProcessed("put")
	if got := testutil.ToFloat64(b.recordsProcessed.WithLabelValues("put")); got != 0 {
		t.Fatalf("second Recorder observed first Recorder's counts: %v", got)
	}
}
