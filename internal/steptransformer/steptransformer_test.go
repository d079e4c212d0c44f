package steptransformer

import (
	"testing"

	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

func TestDeltaAcrossRecords(t *testing.T) {
	tr, err := New(Config{
		StepperNames: []string{"delta"},
		ValueFields:  []string{"x"},
		Policy:       value.PolicyStringsFloatsInts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r1 := record.FromPairs("x", "10")
	tr.Process(r1)
	if v, _ := r1.Get("x_delta"); v != "0" {
		t.Fatalf("first delta = %q, want 0", v)
	}
	r2 := record.FromPairs("x", "15")
	tr.Process(r2)
	if v, _ := r2.Get("x_delta"); v != "5" {
		t.Fatalf("second delta = %q, want 5", v)
	}
}

func TestGroupByIsolatesState(t *testing.T) {
	tr, err := New(Config{
		StepperNames:  []string{"rsum"},
		ValueFields:   []string{"x"},
		GroupByFields: []string{"g"},
		Policy:        value.PolicyStringsFloatsInts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a1 := record.FromPairs("g", "A", "x", "1")
	tr.Process(a1)
	b1 := record.FromPairs("g", "B", "x", "100")
	tr.Process(b1)
	a2 := record.FromPairs("g", "A", "x", "2")
	tr.Process(a2)

	if v, _ := a2.Get("x_rsum"); v != "3" {
		t.Fatalf("group A rsum = %q, want 3 (isolated from group B)", v)
	}
	if v, _ := b1.Get("x_rsum"); v != "100" {
		t.Fatalf("group B rsum = %q, want 100", v)
	}
}

func TestMissingGroupByFieldPassesThroughUnchanged(t *testing.T) {
	tr, err := New(Config{
		StepperNames:  []string{"delta"},
		ValueFields:   []string{"x"},
		GroupByFields: []string{"g"},
		Policy:        value.PolicyStringsFloatsInts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := record.FromPairs("x", "10")
	tr.Process(r)
	if r.Has("x_delta") {
		t.Fatal("record missing configured group-by field should pass through unchanged")
	}
}

func TestMissingValueFieldSkipsPair(t *testing.T) {
	tr, err := New(Config{
		StepperNames: []string{"delta"},
		ValueFields:  []string{"y"},
		Policy:       value.PolicyStringsFloatsInts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := record.FromPairs("x", "10")
	tr.Process(r)
	if r.Has("y_delta") {
		t.Fatal("field absent from record should not produce output")
	}
}

func TestUnknownStepperIsRejected(t *testing.T) {
	if _, err := New(Config{StepperNames: []string{"bogus"}, ValueFields: []string{"x"}}); err == nil {
		t.Fatal("expected unknown stepper name to error")
	}
}

func TestMalformedDecayAlphaIsRejected(t *testing.T) {
	if _, err := New(Config{
		StepperNames: []string{"decay"},
		ValueFields:  []string{"x"},
		DecayAlphas:  []string{"notanumber"},
	}); err == nil {
		t.Fatal("expected a malformed decay alpha to error")
	}
}

func TestDecayMultiAlpha(t *testing.T) {
	tr, err := New(Config{
		StepperNames: []string{"decay"},
		ValueFields:  []string{"x"},
		DecayAlphas:  []string{"0.1", "0.9"},
		Policy:       value.PolicyStringsFloatsInts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := record.FromPairs("x", "5")
	tr.Process(r)
	if !r.Has("x_decay_0.1") || !r.Has("x_decay_0.9") {
		t.Fatalf("expected both alpha outputs, got %v", r.Names())
	}
}
