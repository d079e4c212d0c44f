package mlm

import (
	"testing"

	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

func TestPutTerminalGetTerminal(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("a"), value.NewString("b")}, value.NewInt(5))
	got, ok := m.GetTerminal(value.NewString("a"), value.NewString("b"))
	if !ok {
		t.Fatal("expected terminal to resolve")
	}
	if i, _ := got.AsInt(); i != 5 {
		t.Fatalf("got %v, want 5", got)
	}
}

func TestGetOrCreateLevelDiscardsTerminal(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("a")}, value.NewInt(1))
	// a is currently terminal; addressing a[b] should discard and replace.
	lvl := m.GetOrCreateLevel(value.NewString("a"))
	lvl.PutTerminal([]value.Value{value.NewString("b")}, value.NewInt(2))
	if _, ok := m.GetTerminal(value.NewString("a")); ok {
		t.Fatal("a should no longer be a terminal")
	}
	got, ok := m.GetTerminal(value.NewString("a"), value.NewString("b"))
	if !ok {
		t.Fatal("expected a.b to resolve")
	}
	if i, _ := got.AsInt(); i != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestRemoveDoesNotPruneAncestors(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("a"), value.NewString("b")}, value.NewInt(1))
	m.Remove(value.NewString("a"), value.NewString("b"))
	lvl, ok := m.GetLevel(value.NewString("a"))
	if !ok {
		t.Fatal("ancestor level a should survive removal of its only child")
	}
	if lvl.Len() != 0 {
		t.Fatalf("a should be empty, got %d entries", lvl.Len())
	}
}

func TestCopySubmapIsIndependent(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("a"), value.NewString("b")}, value.NewInt(1))
	cp, ok := m.CopySubmap(value.NewString("a"))
	if !ok {
		t.Fatal("expected copy to succeed")
	}
	cp.PutTerminal([]value.Value{value.NewString("b")}, value.NewInt(99))
	got, _ := m.GetTerminal(value.NewString("a"), value.NewString("b"))
	if i, _ := got.AsInt(); i != 1 {
		t.Fatalf("original mutated via copy: %v", got)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("z")}, value.NewInt(1))
	m.PutTerminal([]value.Value{value.NewString("a")}, value.NewInt(2))
	keys := m.CopyKeysFromLevel()
	if len(keys) != 2 || keyString(keys[0]) != "z" || keyString(keys[1]) != "a" {
		t.Fatalf("insertion order not preserved: %v", keys)
	}
}

func TestFlattenToRecord(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("group1"), value.NewString("count")}, value.NewInt(3))
	m.PutTerminal([]value.Value{value.NewString("group1"), value.NewString("sum")}, value.NewFloat(4.5))
	rec := record.New()
	FlattenToRecord(m, rec, "", ":", "")
	if v, ok := rec.Get("group1:count"); !ok || v != "3" {
		t.Fatalf("group1:count = %q,%v", v, ok)
	}
	if v, ok := rec.Get("group1:sum"); !ok || v != "4.5" {
		t.Fatalf("group1:sum = %q,%v", v, ok)
	}
}

func TestFlattenGroupedScalarPerGroup(t *testing.T) {
	// @s[$g] += $v, then emit @s, "g" — spec.md §8 scenario 5: each group
	// key maps directly to a terminal, named by the oosvar's own name.
	m := New()
	m.PutTerminal([]value.Value{value.NewString("a")}, value.NewInt(4))
	m.PutTerminal([]value.Value{value.NewString("b")}, value.NewInt(2))

	recs := FlattenGrouped(m, "s", []string{"g"}, "")
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	got := map[string]string{}
	for _, rec := range recs {
		g, _ := rec.Get("g")
		s, _ := rec.Get("s")
		got[g] = s
	}
	if got["a"] != "4" || got["b"] != "2" {
		t.Fatalf("got %v, want a=4 b=2", got)
	}
}

func TestFlattenGroupedNoTopNamesFlattensWhole(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("count")}, value.NewInt(3))
	recs := FlattenGrouped(m, "unused", nil, "")
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if v, ok := recs[0].Get("count"); !ok || v != "3" {
		t.Fatalf("count = %q,%v", v, ok)
	}
}

func TestFlattenTopNamesUnion(t *testing.T) {
	m := New()
	m.PutTerminal([]value.Value{value.NewString("x"), value.NewString("count")}, value.NewInt(1))
	m.PutTerminal([]value.Value{value.NewString("y"), value.NewString("sum")}, value.NewInt(2))
	names := FlattenTopNames(m)
	if len(names) != 2 || names[0] != "count" || names[1] != "sum" {
		t.Fatalf("top names = %v", names)
	}
}
