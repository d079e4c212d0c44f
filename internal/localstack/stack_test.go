package localstack

import (
	"testing"

	"github.com/tabctl/tabctl/internal/value"
)

func TestDefineAssignGetScalar(t *testing.T) {
	s := New()
	s.EnterFrame(2)
	s.DefineScalar(0, "x", value.MaskNum)
	got := s.AssignScalar(0, value.NewInt(5))
	if i, ok := got.AsInt(); !ok || i != 5 {
		t.Fatalf("assign returned %v", got)
	}
	if v := s.GetScalar(0); v.Kind() != value.Int {
		t.Fatalf("GetScalar = %v", v)
	}
}

func TestTypeMaskRejection(t *testing.T) {
	s := New()
	s.EnterFrame(1)
	s.DefineScalar(0, "n", value.MaskInt)
	r := s.AssignScalar(0, value.NewString("oops"))
	if !r.IsError() {
		t.Fatal("expected type error assigning String to Int-masked slot")
	}
}

func TestAbsentAssignIsNoOp(t *testing.T) {
	s := New()
	s.EnterFrame(1)
	s.DefineScalar(0, "x", value.MaskAny)
	s.AssignScalar(0, value.NewInt(1))
	s.AssignScalar(0, value.NewAbsent())
	if v := s.GetScalar(0); v.Kind() != value.Int {
		t.Fatalf("absent assignment should not overwrite: %v", v)
	}
}

func TestFrameScopingIsolatesSlots(t *testing.T) {
	s := New()
	s.EnterFrame(1)
	s.DefineScalar(0, "outer", value.MaskAny)
	s.AssignScalar(0, value.NewInt(1))

	s.EnterSubframe(1)
	s.DefineScalar(0, "inner", value.MaskAny)
	s.AssignScalar(0, value.NewInt(2))
	if v := s.GetScalar(0); v.Kind() != value.Int {
		t.Fatalf("inner frame slot unreadable: %v", v)
	}
	s.ExitSubframe()

	if v := s.GetScalar(0); s.Name(0) != "outer" {
		t.Fatalf("outer frame slot lost after subframe exit: %v name=%s", v, s.Name(0))
	}
}

func TestMapLocal(t *testing.T) {
	s := New()
	s.EnterFrame(1)
	s.DefineMap(0, "m")
	mp, err := s.GetMap(0)
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	mp.PutTerminal([]value.Value{value.NewString("k")}, value.NewInt(1))
	got, ok := mp.GetTerminal(value.NewString("k"))
	if !ok {
		t.Fatal("expected terminal to resolve")
	}
	if i, _ := got.AsInt(); i != 1 {
		t.Fatalf("got %v", got)
	}
}
