package dslexec

import (
	"testing"

	"github.com/tabctl/tabctl/internal/ast"
	"github.com/tabctl/tabctl/internal/cst"
	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

func pos() ast.Pos { return ast.Pos{Line: 1, Column: 1} }

func runProgram(t *testing.T, main *ast.Block, rec *record.Record, store *mlm.Map) *Variables {
	t.Helper()
	prog, err := cst.Build(&ast.Program{Main: main}, cst.KindPut)
	if err != nil {
		t.Fatalf("cst.Build: %v", err)
	}
	v := NewVariables(rec, store, value.PolicyStringsFloatsInts, "")
	ev := New(prog, v)
	ev.Run()
	return v
}

func TestAssignFieldOverlayOrder(t *testing.T) {
	rec := record.FromPairs("a", "1", "b", "2")
	main := &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.AssignStatement{
			Pos:  pos(),
			Kind: ast.AssignField,
			FieldName: "c",
			RHS: &ast.BinaryExpr{
				Pos: pos(), Op: "+",
				Left:  &ast.FieldRef{Pos: pos(), Name: "a"},
				Right: &ast.FieldRef{Pos: pos(), Name: "b"},
			},
		},
	}}
	v := runProgram(t, main, rec, mlm.New())
	v.Overlay.Flush("")
	names := rec.Names()
	if len(names) != 3 || names[2] != "c" {
		t.Fatalf("field order = %v", names)
	}
	got, _ := rec.Get("c")
	if got != "3" {
		t.Fatalf("c = %q, want 3", got)
	}
}

func TestIfElseBranching(t *testing.T) {
	rec := record.FromPairs("x", "5")
	main := &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.IfStatement{
			Pos:    pos(),
			Conds:  []ast.Expression{&ast.BinaryExpr{Pos: pos(), Op: ">", Left: &ast.FieldRef{Pos: pos(), Name: "x"}, Right: &ast.Literal{Pos: pos(), Tag: "int", I: 10}}},
			Blocks: []*ast.Block{{Pos: pos(), Stmts: []ast.Statement{&ast.AssignStatement{Pos: pos(), Kind: ast.AssignField, FieldName: "branch", RHS: &ast.Literal{Pos: pos(), Tag: "string", S: "big"}}}}},
			ElseBlk: &ast.Block{Pos: pos(), Stmts: []ast.Statement{&ast.AssignStatement{Pos: pos(), Kind: ast.AssignField, FieldName: "branch", RHS: &ast.Literal{Pos: pos(), Tag: "string", S: "small"}}}},
		},
	}}
	v := runProgram(t, main, rec, mlm.New())
	v.Overlay.Flush("")
	got, _ := rec.Get("branch")
	if got != "small" {
		t.Fatalf("branch = %q, want small", got)
	}
}

func TestOosvarAssignFromField(t *testing.T) {
	rec := record.FromPairs("x", "10")
	store := mlm.New()
	main := &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.AssignStatement{
			Pos: pos(), Kind: ast.AssignOosvar, OosvarName: "total",
			RHS: &ast.FieldRef{Pos: pos(), Name: "x"},
		},
	}}
	runProgram(t, main, rec, store)
	got, ok := store.GetTerminal(value.NewString("total"))
	if !ok {
		t.Fatal("expected @total to resolve")
	}
	if i, _ := got.AsInt(); i != 10 {
		t.Fatalf("@total = %v, want 10", got)
	}
}

func TestFilterStatementSetsResult(t *testing.T) {
	rec := record.FromPairs("x", "5")
	prog, err := cst.Build(&ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.FilterStatement{Pos: pos(), Expr: &ast.BinaryExpr{
			Pos: pos(), Op: ">",
			Left:  &ast.FieldRef{Pos: pos(), Name: "x"},
			Right: &ast.Literal{Pos: pos(), Tag: "int", I: 1},
		}},
	}}}, cst.KindPut)
	if err != nil {
		t.Fatalf("cst.Build: %v", err)
	}
	v := NewVariables(rec, mlm.New(), value.PolicyStringsFloatsInts, "")
	ev := New(prog, v)
	if !ev.Run() {
		t.Fatal("expected filter result true")
	}
}

func TestBreakOutOfLoop(t *testing.T) {
	rec := record.New()
	store := mlm.New()
	// local i = 0; while (i < 5) { @sum = @sum + i; i = i + 1; if (i == 3) { break; } }
	main := &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.AssignStatement{Pos: pos(), Kind: ast.AssignLocalScalar, LocalSlot: 0, LocalName: "i", DeclMask: int(value.MaskInt), RHS: &ast.Literal{Pos: pos(), Tag: "int", I: 0}},
		&ast.WhileStatement{
			Pos:  pos(),
			Cond: &ast.BinaryExpr{Pos: pos(), Op: "<", Left: &ast.LocalRef{Pos: pos(), SlotIndex: 0}, Right: &ast.Literal{Pos: pos(), Tag: "int", I: 5}},
			Body: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
				&ast.AssignStatement{Pos: pos(), Kind: ast.AssignLocalScalar, LocalSlot: 0, DeclMask: -1, RHS: &ast.BinaryExpr{
					Pos: pos(), Op: "+", Left: &ast.LocalRef{Pos: pos(), SlotIndex: 0}, Right: &ast.Literal{Pos: pos(), Tag: "int", I: 1},
				}},
				&ast.IfStatement{
					Pos:   pos(),
					Conds: []ast.Expression{&ast.BinaryExpr{Pos: pos(), Op: "==", Left: &ast.LocalRef{Pos: pos(), SlotIndex: 0}, Right: &ast.Literal{Pos: pos(), Tag: "int", I: 3}}},
					Blocks: []*ast.Block{{Pos: pos(), Stmts: []ast.Statement{&ast.BreakStatement{Pos: pos()}}}},
				},
			}},
		},
	}}
	prog, err := cst.Build(&ast.Program{Main: main}, cst.KindPut)
	if err != nil {
		t.Fatalf("cst.Build: %v", err)
	}
	v := NewVariables(rec, store, value.PolicyStringsFloatsInts, "")
	v.Locals.EnterFrame(1)
	ev := New(prog, v)
	ev.Run()
	got := v.Locals.GetScalar(0)
	if i, _ := got.AsInt(); i != 3 {
		t.Fatalf("i after break = %v, want 3", got)
	}
}

func TestUnsetField(t *testing.T) {
	rec := record.FromPairs("a", "1", "b", "2")
	main := &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.UnsetStatement{Pos: pos(), Targets: []ast.UnsetTarget{{Kind: ast.UnsetField, FieldName: "a"}}},
	}}
	runProgram(t, main, rec, mlm.New())
	if rec.Has("a") {
		t.Fatal("expected field a to be unset")
	}
}
