package dslexec

import (
	"os"

	"github.com/tabctl/tabctl/internal/ast"
	"github.com/tabctl/tabctl/internal/cst"
	"github.com/tabctl/tabctl/internal/value"
)

// Evaluator walks a validated cst.Program against one Variables instance.
// A fresh Evaluator (sharing the process-lifetime Store) is constructed per
// record; Funcs/Subrs are shared (linked once at startup).
type Evaluator struct {
	v    *Variables
	prog *cst.Program
}

// New returns an Evaluator for one record's execution against prog.
func New(prog *cst.Program, v *Variables) *Evaluator {
	return &Evaluator{v: v, prog: prog}
}

// Run executes the program's main block and reports the final filter
// result. For a KindFilter program, the final top-level statement is
// required (by cst.Build's validateFilterTail) to be a bare boolean
// expression; that expression's value becomes the filter result directly,
// rather than being evaluated and discarded the way a plain expression
// statement's value normally is.
func (e *Evaluator) Run() bool {
	blk := e.prog.AST.Main
	if blk == nil {
		return e.v.FilterResult
	}
	n := len(blk.Stmts)
	for i, stmt := range blk.Stmts {
		if e.prog.Kind == cst.KindFilter && i == n-1 {
			if es, ok := stmt.(*ast.ExprStatement); ok {
				b, ok2 := strictBool(e.evalExpr(es.Expr))
				e.v.FilterResult = ok2 && b
				break
			}
		}
		e.execStatement(stmt)
		if e.v.sig != signalNone {
			break
		}
	}
	return e.v.FilterResult
}

// RunBlock executes an arbitrary top-level block (begin or end).
func (e *Evaluator) RunBlock(blk *ast.Block) {
	e.execBlock(blk)
}

func (e *Evaluator) evalKeys(keys []ast.Expression) []value.Value {
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = e.evalExpr(k)
	}
	return out
}

// evalExpr is the single dispatch point for every expression node,
// mirroring funxy's Eval/evalCore switch-on-node-type structure.
func (e *Evaluator) evalExpr(expr ast.Expression) value.Value {
	switch n := expr.(type) {

	case *ast.Literal:
		switch n.Tag {
		case "int":
			return value.NewInt(n.I)
		case "float":
			return value.NewFloat(n.F)
		case "string":
			return value.NewString(n.S)
		case "bool":
			return value.NewBool(n.B)
		default:
			return value.NewError("malformed literal")
		}

	case *ast.ContextVar:
		if v, ok := e.v.contextVar(n.Name); ok {
			return v
		}
		return value.NewError("unknown context variable %q", n.Name)

	case *ast.FieldRef:
		return e.v.Overlay.Get(n.Name)

	case *ast.IndirectFieldRef:
		name := e.evalExpr(n.Name)
		s, ok := name.AsString()
		if !ok {
			return value.NewError("indirect field name must be a string")
		}
		return e.v.Overlay.Get(s)

	case *ast.FullRecordRef:
		// A bare $* as an expression has no single scalar value; callers
		// needing the whole record (assignment, for-loops) special-case
		// ast.FullRecordRef before calling evalExpr.
		return value.NewError("$* is not a scalar expression")

	case *ast.OosvarRef:
		keys := e.evalKeys(n.Keys)
		full := append([]value.Value{value.NewString(n.Name)}, keys...)
		if len(n.Keys) == 0 {
			if lvl, ok := e.v.Store.GetLevel(value.NewString(n.Name)); ok {
				_ = lvl
				return value.NewAbsent() // bare @name addressing a submap has no scalar value
			}
		}
		v, ok := e.v.Store.GetTerminal(full...)
		if !ok {
			return value.NewAbsent()
		}
		return v

	case *ast.FullOosvarRef:
		return value.NewError("@* is not a scalar expression")

	case *ast.LocalRef:
		if len(n.Keys) == 0 {
			return e.v.Locals.GetScalar(n.SlotIndex)
		}
		mp, err := e.v.Locals.GetMap(n.SlotIndex)
		if err != nil {
			return value.NewError("%s", err.Error())
		}
		keys := e.evalKeys(n.Keys)
		v, ok := mp.GetTerminal(keys...)
		if !ok {
			return value.NewAbsent()
		}
		return v

	case *ast.EnvRef:
		name := e.evalExpr(n.Name)
		s, ok := name.AsString()
		if !ok {
			return value.NewError("ENV[...] name must be a string")
		}
		if v, ok := e.v.Env[s]; ok {
			return value.ParseInferred(v, e.v.Policy)
		}
		if v, ok := os.LookupEnv(s); ok {
			return value.ParseInferred(v, e.v.Policy)
		}
		return value.NewAbsent()

	case *ast.BinaryExpr:
		return e.evalBinary(n)

	case *ast.UnaryExpr:
		operand := e.evalExpr(n.Operand)
		switch n.Op {
		case "-":
			return value.Neg(operand)
		case "!":
			b, ok := value.CoerceToBool(operand)
			if !ok {
				return value.NewError("! requires a Bool operand")
			}
			return value.Not(value.NewBool(b))
		default:
			return value.NewError("unknown unary operator %q", n.Op)
		}

	case *ast.TernaryExpr:
		cond := e.evalExpr(n.Cond)
		b, ok := value.CoerceToBool(cond)
		if !ok {
			return value.NewError("ternary condition must be a strict Bool")
		}
		if b {
			return e.evalExpr(n.Then)
		}
		return e.evalExpr(n.Else)

	case *ast.CallExpr:
		if fn, ok := e.v.Funcs[n.Name]; ok {
			return e.callFunc(fn, n.Args)
		}
		return value.NewError("call to undefined function %q", n.Name)

	default:
		return value.NewError("unhandled expression node")
	}
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr) value.Value {
	// && and || short-circuit, unlike internal/value.And/Or which assume
	// both operands already evaluated (see internal/value/compare.go doc).
	if n.Op == "&&" {
		l := e.evalExpr(n.Left)
		if l.IsError() || l.IsAbsent() {
			return l
		}
		lb, ok := value.CoerceToBool(l)
		if !ok {
			return value.NewError("&& requires Bool operands")
		}
		if !lb {
			return value.NewBool(false)
		}
		r := e.evalExpr(n.Right)
		rb, ok := value.CoerceToBool(r)
		if !ok {
			return value.NewError("&& requires Bool operands")
		}
		return value.NewBool(rb)
	}
	if n.Op == "||" {
		l := e.evalExpr(n.Left)
		if l.IsError() || l.IsAbsent() {
			return l
		}
		lb, ok := value.CoerceToBool(l)
		if !ok {
			return value.NewError("|| requires Bool operands")
		}
		if lb {
			return value.NewBool(true)
		}
		r := e.evalExpr(n.Right)
		rb, ok := value.CoerceToBool(r)
		if !ok {
			return value.NewError("|| requires Bool operands")
		}
		return value.NewBool(rb)
	}

	l := e.evalExpr(n.Left)
	r := e.evalExpr(n.Right)
	switch n.Op {
	case "+":
		return value.Add(l, r)
	case "-":
		return value.Sub(l, r)
	case "*":
		return value.Mul(l, r)
	case "/":
		return value.Div(l, r)
	case "//":
		return value.IntDiv(l, r)
	case "%":
		return value.Mod(l, r)
	case "&":
		return value.BitAnd(l, r)
	case "|":
		return value.BitOr(l, r)
	case "^":
		return value.BitXor(l, r)
	case "<", "<=", "==", "!=", ">=", ">":
		return value.Compare(l, r, n.Op)
	default:
		return value.NewError("unknown binary operator %q", n.Op)
	}
}
