package dslexec

import (
	"github.com/tabctl/tabctl/internal/ast"
	"github.com/tabctl/tabctl/internal/value"
)

// FuncDef and SubrDef are the linked, executable forms of ast.FuncDef/
// ast.SubrDef. Callsites are resolved after all definitions are built
// (spec.md §4.6.3: "two-pass linking"); Link performs that second pass,
// producing name-indexed tables in which each call looks up its definition
// by name at run time.
type FuncDef struct {
	Name      string
	ParamMask []value.TypeMask
	FrameSize int
	Body      *ast.Block
}

type SubrDef struct {
	Name      string
	ParamMask []value.TypeMask
	FrameSize int
	Body      *ast.Block
}

// Link builds the name-indexed function/subroutine tables from a validated
// program. Call before evaluating any record.
func Link(prog *ast.Program) (funcs map[string]*FuncDef, subrs map[string]*SubrDef) {
	funcs = make(map[string]*FuncDef, len(prog.Funcs))
	for _, fn := range prog.Funcs {
		masks := make([]value.TypeMask, len(fn.ParamMask))
		for i, m := range fn.ParamMask {
			masks[i] = value.TypeMask(m)
		}
		funcs[fn.Name] = &FuncDef{Name: fn.Name, ParamMask: masks, FrameSize: fn.FrameSize, Body: fn.Body}
	}
	subrs = make(map[string]*SubrDef, len(prog.Subrs))
	for _, sr := range prog.Subrs {
		masks := make([]value.TypeMask, len(sr.ParamMask))
		for i, m := range sr.ParamMask {
			masks[i] = value.TypeMask(m)
		}
		subrs[sr.Name] = &SubrDef{Name: sr.Name, ParamMask: masks, FrameSize: sr.FrameSize, Body: sr.Body}
	}
	return funcs, subrs
}

// callFunc evaluates args in the caller's scope, pushes a fresh frame with
// them bound at parameter slots 0..N-1, executes the body, and returns the
// function's return value (spec.md §4.6.3: "arguments are evaluated in the
// caller, placed into the callee's frame at declared parameter indices").
func (e *Evaluator) callFunc(fn *FuncDef, args []ast.Expression) value.Value {
	if e.v.depth >= maxEvalDepth {
		return value.NewError("recursion depth exceeded calling func %q", fn.Name)
	}
	argVals := make([]value.Value, len(args))
	for i, a := range args {
		argVals[i] = e.evalExpr(a)
	}

	e.v.depth++
	e.v.Locals.EnterFrame(fn.FrameSize)
	for i, av := range argVals {
		if i >= len(fn.ParamMask) {
			break
		}
		e.v.Locals.DefineScalar(i, "", fn.ParamMask[i])
		e.v.Locals.AssignScalar(i, av)
	}

	prevSig, prevRet := e.v.sig, e.v.returnValue
	e.v.sig, e.v.returnValue = signalNone, value.NewAbsent()
	e.execBlock(fn.Body)
	ret := e.v.returnValue
	e.v.sig, e.v.returnValue = prevSig, prevRet

	e.v.Locals.ExitFrame()
	e.v.depth--
	return ret
}

// callSubr is callFunc's void counterpart (spec.md §6: "subroutine" is a
// callsite statement, not an expression).
func (e *Evaluator) callSubr(sr *SubrDef, args []ast.Expression) {
	if e.v.depth >= maxEvalDepth {
		return
	}
	argVals := make([]value.Value, len(args))
	for i, a := range args {
		argVals[i] = e.evalExpr(a)
	}

	e.v.depth++
	e.v.Locals.EnterFrame(sr.FrameSize)
	for i, av := range argVals {
		if i >= len(sr.ParamMask) {
			break
		}
		e.v.Locals.DefineScalar(i, "", sr.ParamMask[i])
		e.v.Locals.AssignScalar(i, av)
	}

	prevSig := e.v.sig
	e.v.sig = signalNone
	e.execBlock(sr.Body)
	e.v.sig = prevSig

	e.v.Locals.ExitFrame()
	e.v.depth--
}
