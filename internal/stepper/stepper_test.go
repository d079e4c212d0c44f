package stepper

import (
	"testing"

	"github.com/tabctl/tabctl/internal/value"
)

func TestDeltaFirstRecordIsZero(t *testing.T) {
	s := newDelta(nil, false)
	out := s.Process(value.NewInt(10))
	if i, ok := out[0].Value.AsInt(); !ok || i != 0 {
		t.Fatalf("first delta = %v, want Int(0)", out[0].Value)
	}
	out2 := s.Process(value.NewInt(15))
	if i, ok := out2[0].Value.AsInt(); !ok || i != 5 {
		t.Fatalf("second delta = %v, want Int(5)", out2[0].Value)
	}
}

func TestDeltaFloatZeroUnderF(t *testing.T) {
	s := newDelta(nil, true)
	out := s.Process(value.NewFloat(3.5))
	if out[0].Value.Kind() != value.Float {
		t.Fatalf("expected float zero seed, got %v", out[0].Value)
	}
}

func TestFromFirstTracksOriginal(t *testing.T) {
	s := newFromFirst(nil, false)
	s.Process(value.NewInt(100))
	out := s.Process(value.NewInt(130))
	if i, ok := out[0].Value.AsInt(); !ok || i != 30 {
		t.Fatalf("from-first = %v, want Int(30)", out[0].Value)
	}
}

func TestRatioFirstRecordIsOne(t *testing.T) {
	s := newRatio(nil, false)
	out := s.Process(value.NewInt(4))
	f, ok := out[0].Value.AsFloat()
	if !ok || f != 1.0 {
		t.Fatalf("first ratio = %v, want Float(1.0)", out[0].Value)
	}
	out2 := s.Process(value.NewInt(8))
	f2, _ := out2[0].Value.AsFloat()
	if f2 != 2.0 {
		t.Fatalf("second ratio = %v, want 2.0", f2)
	}
}

func TestRsumAccumulates(t *testing.T) {
	s := newRsum(nil, false)
	s.Process(value.NewInt(1))
	s.Process(value.NewInt(2))
	out := s.Process(value.NewInt(3))
	if i, ok := out[0].Value.AsInt(); !ok || i != 6 {
		t.Fatalf("rsum = %v, want Int(6)", out[0].Value)
	}
}

func TestCounterCountsNonNumericPresence(t *testing.T) {
	s := newCounter(nil, false)
	s.Process(value.NewString("hello"))
	out := s.Process(value.NewString("world"))
	if i, ok := out[0].Value.AsInt(); !ok || i != 2 {
		t.Fatalf("counter = %v, want Int(2)", out[0].Value)
	}
}

func TestCounterSkipsAbsent(t *testing.T) {
	s := newCounter(nil, false)
	if out := s.Process(value.NewAbsent()); out != nil {
		t.Fatalf("expected no output for absent input, got %v", out)
	}
}

func TestCounterStaysFloatUnderF(t *testing.T) {
	s := newCounter(nil, true)
	s.Process(value.NewString("a"))
	out := s.Process(value.NewString("b"))
	if out[0].Value.Kind() != value.Float {
		t.Fatalf("counter under -F = %v, want a float", out[0].Value)
	}
	f, ok := out[0].Value.AsFloat()
	if !ok || f != 2.0 {
		t.Fatalf("counter under -F = %v, want Float(2.0)", out[0].Value)
	}
}

func TestValidateDecayAlphasRejectsMalformed(t *testing.T) {
	if err := ValidateDecayAlphas([]string{"0.5", "notanumber"}); err == nil {
		t.Fatal("expected an error for a non-numeric decay alpha")
	}
}

func TestValidateDecayAlphasAcceptsNumeric(t *testing.T) {
	if err := ValidateDecayAlphas([]string{"0.1", "0.9"}); err != nil {
		t.Fatalf("ValidateDecayAlphas: %v", err)
	}
}

func TestDecaySeedsThenSmooths(t *testing.T) {
	s := newDecay([]string{"0.5"}, false)
	out := s.Process(value.NewFloat(10))
	f, _ := out[0].Value.AsFloat()
	if f != 10 {
		t.Fatalf("first decay = %v, want 10", f)
	}
	out2 := s.Process(value.NewFloat(20))
	f2, _ := out2[0].Value.AsFloat()
	want := 0.5*20 + 0.5*10
	if f2 != want {
		t.Fatalf("second decay = %v, want %v", f2, want)
	}
}

func TestLookupUnknownStepper(t *testing.T) {
	if _, ok := Lookup("no-such-stepper"); ok {
		t.Fatal("expected unknown stepper to not resolve")
	}
}
