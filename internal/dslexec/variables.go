// Package dslexec is the tree-walking evaluator for the embedded DSL:
// statement and expression execution over a CST-validated program.
//
// Split from internal/ast (shape) and internal/cst (build-time validation)
// the way funxy splits ast from evaluator from vm — except there is no vm
// counterpart here: spec.md §4.6 is a tree-walker only, so funxy's
// bytecode-compiler/VM backend has no home in this package. Dispatch style
// (a single Eval entry point switching on concrete node type, depth-limited
// recursion to fail gracefully on pathological recursive calls) is grounded
// on funxy's internal/evaluator/evaluator.go Eval/evalCore structure.
package dslexec

import (
	"math"

	"github.com/tabctl/tabctl/internal/localstack"
	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

// signal is how a statement communicates loop/function control flow up to
// its caller, in place of exceptions (spec.md §6: "modeled as explicit
// return codes or small enum-flags on the Variables structure").
type signal int

const (
	signalNone signal = iota
	signalBreak
	signalContinue
	signalReturn
)

// maxEvalDepth bounds recursive func/subr calls so a pathological
// self-recursive script fails with a diagnostic instead of crashing the
// Go process via stack overflow (funxy applies the same defensive
// technique to its own recursive evaluation).
const maxEvalDepth = 2000

// Sink is the output-statement boundary: dslexec calls it for emit/emitf/
// tee/print/dump, and internal/output provides the concrete writer-pool
// implementation. Kept as a narrow interface here so dslexec does not
// import internal/output (and its file/gzip/sqlite machinery) directly.
type Sink interface {
	WriteRecord(redirect Redirect, rec *record.Record) error
	Print(redirect Redirect, text string) error
	Dump(redirect Redirect, store *mlm.Map, numericFormat string) error
}

// Redirect mirrors ast.Redirect but with the target already evaluated to a
// string, since dslexec is the only thing that can evaluate the target
// expression.
type Redirect struct {
	Mode   string // "", "write", "append", "pipe"
	Target string
}

// Variables is the shared execution state threaded through every statement
// handler for one record (spec.md §4.6: "a shared Variables structure").
type Variables struct {
	Rec     *record.Record
	Overlay *record.Overlay
	Store   *mlm.Map // process-lifetime oosvar store, shared across records
	Locals  *localstack.Stack

	Policy        value.Policy
	NumericFormat string

	Env    map[string]string
	NR     int64
	NF     int64
	FNR    int64
	Fname  string
	Fnum   int64

	Funcs map[string]*FuncDef
	Subrs map[string]*SubrDef

	Sink Sink

	FilterResult bool // set by a `filter expr` statement; defaults true for put programs

	sig         signal
	returnValue value.Value
	depth       int
}

// NewVariables constructs the per-record execution state. store is the
// process-lifetime oosvar MLM, shared across every record in the stream.
func NewVariables(rec *record.Record, store *mlm.Map, policy value.Policy, numericFormat string) *Variables {
	return &Variables{
		Rec:           rec,
		Overlay:       record.NewOverlay(rec, policy),
		Store:         store,
		Locals:        localstack.New(),
		Policy:        policy,
		NumericFormat: numericFormat,
		Env:           make(map[string]string),
		Funcs:         make(map[string]*FuncDef),
		Subrs:         make(map[string]*SubrDef),
		FilterResult:  true,
	}
}

func (v *Variables) contextVar(name string) (value.Value, bool) {
	switch name {
	case "NR":
		return value.NewInt(v.NR), true
	case "NF":
		return value.NewInt(v.NF), true
	case "FNR":
		return value.NewInt(v.FNR), true
	case "FILENAME":
		return value.NewString(v.Fname), true
	case "FILENUM":
		return value.NewInt(v.Fnum), true
	case "M_PI":
		return value.NewFloat(math.Pi), true
	case "M_E":
		return value.NewFloat(math.E), true
	default:
		return value.Value{}, false
	}
}
