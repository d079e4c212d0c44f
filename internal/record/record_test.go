package record

import (
	"testing"

	"github.com/tabctl/tabctl/internal/value"
)

func TestPutGetOrder(t *testing.T) {
	r := FromPairs("a", "1", "b", "2")
	if got := r.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Names() = %v", got)
	}
	r.Put("a", "9") // update in place, order unchanged
	if got := r.Names(); got[0] != "a" {
		t.Fatalf("update-in-place changed order: %v", got)
	}
	v, ok := r.Get("a")
	if !ok || v != "9" {
		t.Fatalf("Get(a) = %q,%v", v, ok)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	r := FromPairs("a", "1")
	c := r.Copy()
	c.Put("a", "2")
	if v, _ := r.Get("a"); v != "1" {
		t.Fatalf("original mutated via copy: %q", v)
	}
}

func TestOverlayReadWriteOrder(t *testing.T) {
	r := FromPairs("a", "1", "b", "2")
	ov := NewOverlay(r, value.PolicyStringsFloatsInts)
	c := ov.Get("a")
	sum := value.Add(c, ov.Get("b"))
	ov.Set("c", sum)
	ov.Set("a", value.NewString("x"))
	ov.Flush("")

	names := r.Names()
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("field order after overlay flush = %v", names)
	}
	av, _ := r.Get("a")
	bv, _ := r.Get("b")
	cv, _ := r.Get("c")
	if av != "x" || bv != "2" || cv != "3" {
		t.Fatalf("values after flush: a=%q b=%q c=%q", av, bv, cv)
	}
}

func TestOverlayAbsentAssignIsNoOp(t *testing.T) {
	r := FromPairs("a", "1")
	ov := NewOverlay(r, value.PolicyStringsFloatsInts)
	ov.Set("a", value.NewAbsent())
	ov.Flush("")
	if v, _ := r.Get("a"); v != "1" {
		t.Fatalf("absent assignment mutated field: %q", v)
	}
}

func TestRemoveAndRename(t *testing.T) {
	r := FromPairs("a", "1", "b", "2", "c", "3")
	r.Remove("b")
	if r.Has("b") {
		t.Fatal("b should be removed")
	}
	r.Rename("a", "z")
	if r.Has("a") || !r.Has("z") {
		t.Fatal("rename failed")
	}
	if names := r.Names(); names[0] != "z" || names[1] != "c" {
		t.Fatalf("order after rename: %v", names)
	}
}
