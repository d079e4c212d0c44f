// Package cst builds and validates a concrete syntax tree from the external
// ast.Program, enforcing spec.md §4.6's build-time rules before any record
// flows (a violation is a fatal diagnostic, never a run-time surprise).
//
// Split from internal/dslexec the way funxy splits ast (shape) from
// evaluator (execution): this package only validates and packages up the
// already-built ast.Program plus the context-variable table the evaluator
// needs; internal/dslexec owns the actual statement/expression dispatch.
package cst

import (
	"fmt"

	"github.com/tabctl/tabctl/internal/ast"
)

// ProgramKind distinguishes a put program (may do full I/O) from a filter
// program (must end in a bare boolean and sets the emit flag instead).
type ProgramKind int

const (
	KindPut ProgramKind = iota
	KindFilter
)

// Program is a validated ast.Program ready for execution.
type Program struct {
	AST  *ast.Program
	Kind ProgramKind

	// Frame sizes for the three top-level blocks, computed once at build
	// time by scanning every local-variable slot index referenced in each
	// block (spec.md §8: "the block's sub-frame slot count observed at
	// runtime equals the count computed at CST build"). FuncDef/SubrDef
	// carry their own FrameSize from the parser; these three fields give
	// internal/transformer the same fact for begin/main/end, which have no
	// enclosing def node to carry it.
	BeginFrameSize int
	MainFrameSize  int
	EndFrameSize   int
}

// Error is a build-time validation failure, reported with source position.
type Error struct {
	Pos     ast.Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// contextVars is the fixed table of read-only pipeline context variables
// (spec.md §4.7) that IsContextVar checks; Build does not consult it, and
// the evaluator resolves each name at run time (dslexec's contextVar).
var contextVars = map[string]bool{
	"NR": true, "NF": true, "FNR": true, "FILENAME": true, "FILENUM": true,
	"M_PI": true, "M_E": true,
}

// Build validates prog and wraps it as an executable Program. kind selects
// put-vs-filter validation (the filter-specific final-bare-boolean rule).
func Build(prog *ast.Program, kind ProgramKind) (*Program, error) {
	b := &builder{}
	if prog.Begin != nil {
		b.validateBlock(prog.Begin, blockCtx{topLevel: true, inBeginEnd: true})
	}
	if prog.Main != nil {
		b.validateBlock(prog.Main, blockCtx{topLevel: true})
	}
	if prog.End != nil {
		b.validateBlock(prog.End, blockCtx{topLevel: true, inBeginEnd: true})
	}
	for _, fn := range prog.Funcs {
		b.validateBlock(fn.Body, blockCtx{inFunc: true})
	}
	for _, sr := range prog.Subrs {
		b.validateBlock(sr.Body, blockCtx{inSubr: true})
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	if kind == KindFilter {
		if err := validateFilterTail(prog.Main); err != nil {
			return nil, err
		}
	}

	return &Program{
		AST:            prog,
		Kind:           kind,
		BeginFrameSize: frameSize(prog.Begin),
		MainFrameSize:  frameSize(prog.Main),
		EndFrameSize:   frameSize(prog.End),
	}, nil
}

// frameSize returns one past the highest local slot index referenced
// anywhere in blk, i.e. the slot count a flat (non-nested) frame for blk
// needs. Nested blocks (if/while/for bodies) share the same frame as their
// enclosing top-level block — only func/subr bodies get their own frame,
// and those carry a parser-computed FrameSize already.
func frameSize(blk *ast.Block) int {
	max := -1
	var walkExpr func(ast.Expression)
	walkExpr = func(e ast.Expression) {
		switch ex := e.(type) {
		case *ast.LocalRef:
			if ex.SlotIndex > max {
				max = ex.SlotIndex
			}
			for _, k := range ex.Keys {
				walkExpr(k)
			}
		case *ast.BinaryExpr:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *ast.UnaryExpr:
			walkExpr(ex.Operand)
		case *ast.TernaryExpr:
			walkExpr(ex.Cond)
			walkExpr(ex.Then)
			walkExpr(ex.Else)
		case *ast.CallExpr:
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ast.IndirectFieldRef:
			walkExpr(ex.Name)
		case *ast.OosvarRef:
			for _, k := range ex.Keys {
				walkExpr(k)
			}
		case *ast.EnvRef:
			walkExpr(ex.Name)
		}
	}
	see := func(slot int) {
		if slot > max {
			max = slot
		}
	}
	var walkBlock func(*ast.Block)
	walkStmt := func(s ast.Statement) {
		switch st := s.(type) {
		case *ast.AssignStatement:
			if st.Kind == ast.AssignLocalScalar || st.Kind == ast.AssignLocalMap {
				see(st.LocalSlot)
			}
			for _, k := range st.LocalKeys {
				walkExpr(k)
			}
			if st.RHS != nil {
				walkExpr(st.RHS)
			}
		case *ast.MapDeclStatement:
			see(st.LocalSlot)
		case *ast.ExprStatement:
			walkExpr(st.Expr)
		case *ast.IfStatement:
			for _, c := range st.Conds {
				walkExpr(c)
			}
			for _, b := range st.Blocks {
				walkBlock(b)
			}
			walkBlock(st.ElseBlk)
		case *ast.WhileStatement:
			walkExpr(st.Cond)
			walkBlock(st.Body)
		case *ast.DoWhileStatement:
			walkExpr(st.Cond)
			walkBlock(st.Body)
		case *ast.ForSrecStatement:
			see(st.KeySlot)
			if st.ValSlot >= 0 {
				see(st.ValSlot)
			}
			walkBlock(st.Body)
		case *ast.ForOosvarStatement:
			for _, k := range st.BaseKeys {
				walkExpr(k)
			}
			for _, s := range st.KeySlots {
				see(s)
			}
			if st.ValSlot >= 0 {
				see(st.ValSlot)
			}
			walkBlock(st.Body)
		case *ast.ForLocalMapStatement:
			see(st.MapSlot)
			for _, s := range st.KeySlots {
				see(s)
			}
			if st.ValSlot >= 0 {
				see(st.ValSlot)
			}
			walkBlock(st.Body)
		case *ast.TripleForStatement:
			for _, i := range st.Init {
				walkStmtTop(i, walkExpr, see, walkBlock)
			}
			walkExpr(st.Cond)
			for _, u := range st.Update {
				walkStmtTop(u, walkExpr, see, walkBlock)
			}
			walkBlock(st.Body)
		case *ast.ReturnStatement:
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *ast.CallStatement:
			for _, a := range st.Args {
				walkExpr(a)
			}
		case *ast.EmitStatement:
			for _, bk := range st.BaseKeys {
				for _, k := range bk {
					walkExpr(k)
				}
			}
		case *ast.PrintStatement:
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *ast.UnsetStatement:
			for _, tgt := range st.Targets {
				if tgt.Kind == ast.UnsetLocal {
					see(tgt.LocalSlot)
				}
				for _, k := range tgt.OosvarKeys {
					walkExpr(k)
				}
			}
		}
	}
	walkBlock = func(b *ast.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
	}
	walkBlock(blk)
	return max + 1
}

// walkStmtTop handles the TripleForStatement Init/Update lists, which hold
// plain ast.Statement (typically AssignStatement) rather than a *ast.Block.
func walkStmtTop(s ast.Statement, walkExpr func(ast.Expression), see func(int), walkBlock func(*ast.Block)) {
	switch st := s.(type) {
	case *ast.AssignStatement:
		if st.Kind == ast.AssignLocalScalar || st.Kind == ast.AssignLocalMap {
			see(st.LocalSlot)
		}
		if st.RHS != nil {
			walkExpr(st.RHS)
		}
	}
}

// blockCtx threads the enclosing-construct facts a nested statement needs
// to validate itself (spec.md §4.6's build-time rule list).
type blockCtx struct {
	topLevel   bool
	inBeginEnd bool
	inFunc     bool
	inSubr     bool
	inLoop     bool
}

type builder struct {
	errs []error
}

func (b *builder) fail(pos ast.Pos, format string, args ...interface{}) {
	b.errs = append(b.errs, &Error{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) validateBlock(blk *ast.Block, ctx blockCtx) {
	if blk == nil {
		return
	}
	for _, stmt := range blk.Stmts {
		b.validateStatement(stmt, ctx)
	}
}

func (b *builder) validateStatement(stmt ast.Statement, ctx blockCtx) {
	if ctx.inBeginEnd {
		for _, e := range topExprs(stmt) {
			if exprReferencesField(e) {
				b.fail(stmt.Position(), "no access to $field inside begin/end blocks")
				break
			}
		}
	}

	switch s := stmt.(type) {
	case *ast.AssignStatement:
		if ctx.inBeginEnd && (s.Kind == ast.AssignField || s.Kind == ast.AssignIndirectField ||
			s.Kind == ast.AssignOosvarFromFull || s.Kind == ast.AssignFullFromOosvar) {
			b.fail(s.Pos, "no access or assignment to $field inside begin/end blocks")
		}
		if ctx.inFunc && (s.Kind == ast.AssignFullFromOosvar || s.Kind == ast.AssignOosvarFromFull) {
			b.fail(s.Pos, "$*-LHS/RHS not allowed inside func bodies")
		}

	case *ast.IfStatement:
		for _, blk := range s.Blocks {
			b.validateBlock(blk, ctx)
		}
		b.validateBlock(s.ElseBlk, ctx)

	case *ast.WhileStatement:
		b.validateBlock(s.Body, withLoop(ctx))

	case *ast.DoWhileStatement:
		b.validateBlock(s.Body, withLoop(ctx))

	case *ast.ForSrecStatement:
		if ctx.inBeginEnd {
			b.fail(s.Pos, "no access to $* inside begin/end blocks")
		}
		if s.ValSlot >= 0 && s.KeyName == s.ValName {
			b.fail(s.Pos, "for (k, v in $*) requires distinct names for k and v")
		}
		b.validateBlock(s.Body, withLoop(ctx))

	case *ast.ForOosvarStatement:
		for i, ni := range s.KeyNames {
			for j, nj := range s.KeyNames {
				if i != j && ni == nj {
					b.fail(s.Pos, "for (...) binders must have distinct names")
				}
			}
			if s.ValSlot >= 0 && ni == s.ValName {
				b.fail(s.Pos, "for (...) binders must have distinct names")
			}
		}
		b.validateBlock(s.Body, withLoop(ctx))

	case *ast.ForLocalMapStatement:
		b.validateBlock(s.Body, withLoop(ctx))

	case *ast.TripleForStatement:
		for _, init := range s.Init {
			b.validateStatement(init, ctx)
		}
		for _, upd := range s.Update {
			b.validateStatement(upd, ctx)
		}
		b.validateBlock(s.Body, withLoop(ctx))

	case *ast.BreakStatement:
		if !ctx.inLoop {
			b.fail(s.Pos, "break outside a loop")
		}
	case *ast.ContinueStatement:
		if !ctx.inLoop {
			b.fail(s.Pos, "continue outside a loop")
		}

	case *ast.ReturnStatement:
		if s.Value == nil && !ctx.inSubr {
			b.fail(s.Pos, "void return only valid inside a subr")
		}
		if s.Value != nil && !ctx.inFunc {
			b.fail(s.Pos, "return <value> only valid inside a func")
		}

	case *ast.EmitStatement:
		if ctx.inFunc {
			b.fail(s.Pos, "emit not allowed inside func bodies")
		}
	case *ast.EmitfStatement:
		if ctx.inFunc {
			b.fail(s.Pos, "emitf not allowed inside func bodies")
		}
	case *ast.TeeStatement:
		if ctx.inFunc {
			b.fail(s.Pos, "tee not allowed inside func bodies")
		}
	case *ast.FilterStatement:
		if ctx.inFunc {
			b.fail(s.Pos, "filter not allowed inside func bodies")
		}
	case *ast.UnsetStatement:
		if ctx.inFunc {
			for _, tgt := range s.Targets {
				if tgt.Kind == ast.UnsetField || tgt.Kind == ast.UnsetIndirectField || tgt.Kind == ast.UnsetFullRecord {
					b.fail(s.Pos, "unset $... not allowed inside func bodies")
				}
			}
		}

	case *ast.CallStatement, *ast.ExprStatement, *ast.MapDeclStatement,
		*ast.PrintStatement, *ast.DumpStatement:
		// no additional structural constraints beyond what the enclosing
		// block already checked.
	}
}

// topExprs returns the expressions a statement directly owns (not those
// reached through a nested *ast.Block, which validateBlock visits on its
// own), for the begin/end $field-read scan below. AssignStatement's LHS
// kind is checked separately in validateStatement; this only needs to
// reach RHS/condition/argument expressions.
func topExprs(s ast.Statement) []ast.Expression {
	switch st := s.(type) {
	case *ast.AssignStatement:
		var exprs []ast.Expression
		exprs = append(exprs, st.LocalKeys...)
		exprs = append(exprs, st.OosvarKeys...)
		exprs = append(exprs, st.SrcOosvarKeys...)
		exprs = append(exprs, st.DstOosvarKeys...)
		if st.FieldNameExp != nil {
			exprs = append(exprs, st.FieldNameExp)
		}
		if st.EnvName != nil {
			exprs = append(exprs, st.EnvName)
		}
		if st.RHS != nil {
			exprs = append(exprs, st.RHS)
		}
		return exprs
	case *ast.ExprStatement:
		return []ast.Expression{st.Expr}
	case *ast.IfStatement:
		return st.Conds
	case *ast.WhileStatement:
		return []ast.Expression{st.Cond}
	case *ast.DoWhileStatement:
		return []ast.Expression{st.Cond}
	case *ast.ForOosvarStatement:
		return st.BaseKeys
	case *ast.ForLocalMapStatement:
		return st.BaseKeys
	case *ast.TripleForStatement:
		if st.Cond != nil {
			return []ast.Expression{st.Cond}
		}
	case *ast.ReturnStatement:
		if st.Value != nil {
			return []ast.Expression{st.Value}
		}
	case *ast.CallStatement:
		return append([]ast.Expression{}, st.Args...)
	case *ast.EmitStatement:
		var exprs []ast.Expression
		for _, bk := range st.BaseKeys {
			exprs = append(exprs, bk...)
		}
		return withRedirect(exprs, st.Redirect)
	case *ast.EmitfStatement:
		return withRedirect(nil, st.Redirect)
	case *ast.TeeStatement:
		return withRedirect(nil, st.Redirect)
	case *ast.PrintStatement:
		var exprs []ast.Expression
		if st.Value != nil {
			exprs = append(exprs, st.Value)
		}
		return withRedirect(exprs, st.Redirect)
	case *ast.DumpStatement:
		return withRedirect(nil, st.Redirect)
	case *ast.FilterStatement:
		return []ast.Expression{st.Expr}
	case *ast.UnsetStatement:
		var exprs []ast.Expression
		for _, tgt := range st.Targets {
			exprs = append(exprs, tgt.OosvarKeys...)
			if tgt.FieldNameExp != nil {
				exprs = append(exprs, tgt.FieldNameExp)
			}
		}
		return exprs
	}
	return nil
}

func withRedirect(exprs []ast.Expression, r ast.Redirect) []ast.Expression {
	if r.Mode != "" && r.Target != nil {
		exprs = append(exprs, r.Target)
	}
	return exprs
}

// exprReferencesField reports whether e reads the record (a bare $field,
// $[indirect], or $*) anywhere in its subtree.
func exprReferencesField(e ast.Expression) bool {
	if e == nil {
		return false
	}
	switch ex := e.(type) {
	case *ast.FieldRef, *ast.IndirectFieldRef, *ast.FullRecordRef:
		return true
	case *ast.BinaryExpr:
		return exprReferencesField(ex.Left) || exprReferencesField(ex.Right)
	case *ast.UnaryExpr:
		return exprReferencesField(ex.Operand)
	case *ast.TernaryExpr:
		return exprReferencesField(ex.Cond) || exprReferencesField(ex.Then) || exprReferencesField(ex.Else)
	case *ast.CallExpr:
		for _, a := range ex.Args {
			if exprReferencesField(a) {
				return true
			}
		}
	case *ast.OosvarRef:
		for _, k := range ex.Keys {
			if exprReferencesField(k) {
				return true
			}
		}
	case *ast.LocalRef:
		for _, k := range ex.Keys {
			if exprReferencesField(k) {
				return true
			}
		}
	case *ast.EnvRef:
		return exprReferencesField(ex.Name)
	}
	return false
}

func withLoop(ctx blockCtx) blockCtx {
	ctx.inLoop = true
	return ctx
}

// validateFilterTail enforces "the final statement of a filter program must
// be a bare boolean expression" (spec.md §6).
func validateFilterTail(main *ast.Block) error {
	if main == nil || len(main.Stmts) == 0 {
		return &Error{Message: "filter program must end in a bare boolean expression"}
	}
	last := main.Stmts[len(main.Stmts)-1]
	if _, ok := last.(*ast.ExprStatement); !ok {
		return &Error{Pos: last.Position(), Message: "filter program must end in a bare boolean expression"}
	}
	return nil
}

// IsContextVar reports whether name resolves to a fixed context variable.
func IsContextVar(name string) bool {
	return contextVars[name]
}
