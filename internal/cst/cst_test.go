package cst

import (
	"testing"

	"github.com/tabctl/tabctl/internal/ast"
)

func pos() ast.Pos { return ast.Pos{Line: 1, Column: 1} }

func TestBuildRejectsBreakOutsideLoop(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.BreakStatement{Pos: pos()},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for break outside a loop")
	}
}

func TestBuildRejectsContinueOutsideLoop(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.ContinueStatement{Pos: pos()},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for continue outside a loop")
	}
}

func TestBuildRejectsReturnValueOutsideFunc(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.ReturnStatement{Pos: pos(), Value: &ast.Literal{Pos: pos(), Tag: "int", I: 1}},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for return <value> outside a func")
	}
}

func TestBuildRejectsVoidReturnOutsideSubr(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.ReturnStatement{Pos: pos()},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for a void return outside a subr")
	}
}

func TestBuildRejectsDuplicateForLoopBinderNames(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.ForOosvarStatement{
			Pos: pos(), OosvarName: "a",
			KeyNames: []string{"k", "k"}, KeySlots: []int{0, 1}, ValSlot: -1,
			Body: &ast.Block{Pos: pos()},
		},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for duplicate for-loop binder names")
	}
}

func TestBuildRejectsForSrecSameKeyValName(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.ForSrecStatement{
			Pos: pos(), KeySlot: 0, ValSlot: 1, KeyName: "x", ValName: "x",
			Body: &ast.Block{Pos: pos()},
		},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for for (k, v in $*) with k == v")
	}
}

func TestBuildRejectsFieldAssignmentInBeginBlock(t *testing.T) {
	prog := &ast.Program{Begin: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.AssignStatement{Pos: pos(), Kind: ast.AssignField, FieldName: "x",
			RHS: &ast.Literal{Pos: pos(), Tag: "int", I: 1}},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for $field assignment inside begin")
	}
}

func TestBuildRejectsFieldReadInEndBlock(t *testing.T) {
	prog := &ast.Program{End: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.PrintStatement{Pos: pos(), Value: &ast.FieldRef{Pos: pos(), Name: "x"}},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for a bare $field read inside end")
	}
}

func TestBuildRejectsForSrecInBeginBlock(t *testing.T) {
	prog := &ast.Program{Begin: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.ForSrecStatement{Pos: pos(), KeySlot: 0, ValSlot: -1, KeyName: "k",
			Body: &ast.Block{Pos: pos()}},
	}}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for `for (k in $*)` inside begin")
	}
}

func TestBuildRejectsOosvarFromFullInFuncBody(t *testing.T) {
	prog := &ast.Program{Funcs: []*ast.FuncDef{
		{
			Pos: pos(), Name: "f", FrameSize: 0,
			Body: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
				&ast.AssignStatement{
					Pos: pos(), Kind: ast.AssignOosvarFromFull, OosvarName: "a",
				},
			}},
		},
	}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for @a[...] = $* inside a func body")
	}
}

func TestBuildRejectsFullFromOosvarInFuncBody(t *testing.T) {
	prog := &ast.Program{Funcs: []*ast.FuncDef{
		{
			Pos: pos(), Name: "f", FrameSize: 0,
			Body: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
				&ast.AssignStatement{
					Pos: pos(), Kind: ast.AssignFullFromOosvar, OosvarName: "a",
				},
			}},
		},
	}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for $* = @a[...] inside a func body")
	}
}

func TestBuildRejectsEmitInFuncBody(t *testing.T) {
	prog := &ast.Program{Funcs: []*ast.FuncDef{
		{Pos: pos(), Name: "f", Body: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
			&ast.EmitStatement{Pos: pos(), Names: []string{"a"}},
		}}},
	}}
	if _, err := Build(prog, KindPut); err == nil {
		t.Fatal("expected an error for emit inside a func body")
	}
}

func TestBuildRejectsFilterTailNotBareBoolean(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.AssignStatement{Pos: pos(), Kind: ast.AssignField, FieldName: "x",
			RHS: &ast.Literal{Pos: pos(), Tag: "int", I: 1}},
	}}}
	if _, err := Build(prog, KindFilter); err == nil {
		t.Fatal("expected an error for a filter program not ending in a bare boolean")
	}
}

func TestBuildAcceptsFilterTailBareBoolean(t *testing.T) {
	prog := &ast.Program{Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
		&ast.ExprStatement{Pos: pos(), Expr: &ast.BinaryExpr{
			Pos: pos(), Op: ">",
			Left:  &ast.FieldRef{Pos: pos(), Name: "x"},
			Right: &ast.Literal{Pos: pos(), Tag: "int", I: 1},
		}},
	}}}
	if _, err := Build(prog, KindFilter); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestBuildAcceptsValidProgram(t *testing.T) {
	prog := &ast.Program{
		Begin: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
			&ast.AssignStatement{Pos: pos(), Kind: ast.AssignOosvar, OosvarName: "total",
				RHS: &ast.Literal{Pos: pos(), Tag: "int", I: 0}},
		}},
		Main: &ast.Block{Pos: pos(), Stmts: []ast.Statement{
			&ast.AssignStatement{Pos: pos(), Kind: ast.AssignField, FieldName: "y",
				RHS: &ast.FieldRef{Pos: pos(), Name: "x"}},
		}},
	}
	if _, err := Build(prog, KindPut); err != nil {
		t.Fatalf("Build: %v", err)
	}
}
