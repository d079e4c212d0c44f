package dslexec

import (
	"os"

	"github.com/tabctl/tabctl/internal/ast"
	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

// execBlock is the plain block handler: it runs every statement in order
// and stops early only on a control signal (spec.md §4.6: "three block
// handlers exist: plain, loop-aware, triple-for-list").
func (e *Evaluator) execBlock(blk *ast.Block) {
	if blk == nil {
		return
	}
	for _, stmt := range blk.Stmts {
		e.execStatement(stmt)
		if e.v.sig != signalNone {
			return
		}
	}
}

// execLoopBody is the loop-aware block handler: identical to execBlock but
// documented separately because loop statements check break/continue
// immediately after it returns, clearing signalContinue so the loop can
// proceed to its next condition check.
func (e *Evaluator) execLoopBody(blk *ast.Block) {
	e.execBlock(blk)
}

func strictBool(v value.Value) (bool, bool) {
	return value.CoerceToBool(v)
}

func (e *Evaluator) execStatement(stmt ast.Statement) {
	switch s := stmt.(type) {

	case *ast.ExprStatement:
		e.evalExpr(s.Expr)

	case *ast.AssignStatement:
		e.execAssign(s)

	case *ast.MapDeclStatement:
		e.v.Locals.DefineMap(s.LocalSlot, s.LocalName)

	case *ast.IfStatement:
		for i, cond := range s.Conds {
			cv := e.evalExpr(cond)
			b, ok := strictBool(cv)
			if !ok {
				return
			}
			if b {
				e.execBlock(s.Blocks[i])
				return
			}
		}
		e.execBlock(s.ElseBlk)

	case *ast.WhileStatement:
		for {
			cv := e.evalExpr(s.Cond)
			b, ok := strictBool(cv)
			if !ok || !b {
				return
			}
			e.execLoopBody(s.Body)
			if e.v.sig == signalBreak {
				e.v.sig = signalNone
				return
			}
			if e.v.sig == signalContinue {
				e.v.sig = signalNone
				continue
			}
			if e.v.sig != signalNone {
				return
			}
		}

	case *ast.DoWhileStatement:
		for {
			e.execLoopBody(s.Body)
			if e.v.sig == signalBreak {
				e.v.sig = signalNone
				return
			}
			if e.v.sig == signalContinue {
				e.v.sig = signalNone
			} else if e.v.sig != signalNone {
				return
			}
			cv := e.evalExpr(s.Cond)
			b, ok := strictBool(cv)
			if !ok || !b {
				return
			}
		}

	case *ast.ForSrecStatement:
		e.execForSrec(s)

	case *ast.ForOosvarStatement:
		e.execForOosvar(s)

	case *ast.ForLocalMapStatement:
		e.execForLocalMap(s)

	case *ast.TripleForStatement:
		e.execTripleFor(s)

	case *ast.BreakStatement:
		e.v.sig = signalBreak

	case *ast.ContinueStatement:
		e.v.sig = signalContinue

	case *ast.ReturnStatement:
		if s.Value != nil {
			e.v.returnValue = e.evalExpr(s.Value)
		}
		e.v.sig = signalReturn

	case *ast.CallStatement:
		if sr, ok := e.v.Subrs[s.Name]; ok {
			e.callSubr(sr, s.Args)
		}

	case *ast.FilterStatement:
		b, ok := strictBool(e.evalExpr(s.Expr))
		e.v.FilterResult = ok && b

	case *ast.UnsetStatement:
		e.execUnset(s)

	case *ast.EmitStatement:
		e.execEmit(s)
	case *ast.EmitfStatement:
		e.execEmitf(s)
	case *ast.TeeStatement:
		e.execTee(s)
	case *ast.PrintStatement:
		e.execPrint(s)
	case *ast.DumpStatement:
		e.execDump(s)
	}
}

// --- assignment (spec.md §4.6.1) --------------------------------------------

func (e *Evaluator) execAssign(s *ast.AssignStatement) {
	switch s.Kind {
	case ast.AssignField:
		v := e.evalExpr(s.RHS)
		e.v.Overlay.Set(s.FieldName, v)

	case ast.AssignIndirectField:
		nameV := e.evalExpr(s.FieldNameExp)
		name, ok := nameV.AsString()
		if !ok {
			return
		}
		v := e.evalExpr(s.RHS)
		e.v.Overlay.Set(name, v)

	case ast.AssignOosvar:
		keys := e.evalKeys(s.OosvarKeys)
		full := append([]value.Value{value.NewString(s.OosvarName)}, keys...)
		v := e.evalExpr(s.RHS)
		if v.IsAbsent() {
			return
		}
		e.v.Store.PutTerminal(full, v)

	case ast.AssignOosvarFromOos:
		dstKeys := append([]value.Value{value.NewString(s.OosvarName)}, e.evalKeys(s.OosvarKeys)...)
		srcKeys := append([]value.Value{value.NewString(s.SrcOosvarName)}, e.evalKeys(s.SrcOosvarKeys)...)
		mlm.CopySubmapInto(e.v.Store, dstKeys, e.v.Store, srcKeys)

	case ast.AssignOosvarFromFull:
		keys := append([]value.Value{value.NewString(s.OosvarName)}, e.evalKeys(s.OosvarKeys)...)
		e.v.Store.ClearLevel(keys...)
		e.v.Rec.Each(func(name, raw string) {
			v := e.v.Overlay.Get(name)
			full := append(append([]value.Value{}, keys...), value.NewString(name))
			e.v.Store.PutTerminal(full, v)
		})

	case ast.AssignFullFromOosvar:
		srcKeys := e.evalKeys(s.DstOosvarKeys)
		e.v.Overlay.Clear()
		if lvl, ok := e.v.Store.GetLevel(srcKeys...); ok {
			lvl.Each(func(key value.Value, isLevel bool, term value.Value, level *mlm.Map) {
				if isLevel {
					return
				}
				name := value.Format(key, "")
				e.v.Overlay.Set(name, term)
			})
		}

	case ast.AssignLocalScalar:
		v := e.evalExpr(s.RHS)
		if s.DeclMask >= 0 {
			e.v.Locals.DefineScalar(s.LocalSlot, s.LocalName, value.TypeMask(s.DeclMask))
		}
		e.v.Locals.AssignScalar(s.LocalSlot, v)

	case ast.AssignLocalMap:
		mp, err := e.v.Locals.GetMap(s.LocalSlot)
		if err != nil {
			return
		}
		keys := e.evalKeys(s.LocalKeys)
		v := e.evalExpr(s.RHS)
		if v.IsAbsent() {
			return
		}
		mp.PutTerminal(keys, v)

	case ast.AssignEnv:
		nameV := e.evalExpr(s.EnvName)
		name, ok := nameV.AsString()
		if !ok {
			return
		}
		v := e.evalExpr(s.RHS)
		formatted := value.Format(v, e.v.NumericFormat)
		e.v.Env[name] = formatted
		os.Setenv(name, formatted)
	}
}

// --- for loops (spec.md §4.6.2) ---------------------------------------------

// execForSrec iterates a copy of the record so body mutations don't
// perturb iteration, per spec.md's explicit invariant.
func (e *Evaluator) execForSrec(s *ast.ForSrecStatement) {
	snapshot := e.v.Rec.Copy()
	names := snapshot.Names()
	for _, name := range names {
		raw, _ := snapshot.Get(name)
		e.v.Locals.DefineScalar(s.KeySlot, s.KeyName, value.MaskString)
		e.v.Locals.AssignScalar(s.KeySlot, value.NewString(name))
		if s.ValSlot >= 0 {
			e.v.Locals.DefineScalar(s.ValSlot, s.ValName, value.MaskAny)
			e.v.Locals.AssignScalar(s.ValSlot, value.ParseInferred(raw, e.v.Policy))
		}
		e.execLoopBody(s.Body)
		if e.v.sig == signalBreak {
			e.v.sig = signalNone
			return
		}
		if e.v.sig == signalContinue {
			e.v.sig = signalNone
			continue
		}
		if e.v.sig != signalNone {
			return
		}
	}
}

// execForOosvar walks a deep copy of the addressed submap n levels deep,
// binding one key variable per level and the value variable at the leaf
// (spec.md §4.6.2).
func (e *Evaluator) execForOosvar(s *ast.ForOosvarStatement) {
	base := e.evalKeys(s.BaseKeys)
	full := append([]value.Value{value.NewString(s.OosvarName)}, base...)
	lvl, ok := e.v.Store.GetLevel(full...)
	if !ok {
		return
	}
	snapshot := lvl.DeepCopy()
	e.forNestedLevels(snapshot, s.KeySlots, s.KeyNames, s.ValSlot, s.ValName, s.Body, 0)
}

func (e *Evaluator) execForLocalMap(s *ast.ForLocalMapStatement) {
	mp, err := e.v.Locals.GetMap(s.MapSlot)
	if err != nil {
		return
	}
	base := e.evalKeys(s.BaseKeys)
	lvl, ok := mp.GetLevel(base...)
	if !ok {
		return
	}
	snapshot := lvl.DeepCopy()
	e.forNestedLevels(snapshot, s.KeySlots, s.KeyNames, s.ValSlot, s.ValName, s.Body, 0)
}

// forNestedLevels recurses depthRemaining levels of snapshot, binding
// keySlots[i] at each level and valSlot at the final (leaf) level. If the
// configured key count exceeds the map's actual depth, no iteration occurs
// past that point; if it's fewer, deeper terminals are skipped entirely
// (spec.md §4.6.2's explicit edge-case rule).
func (e *Evaluator) forNestedLevels(lvl *mlm.Map, keySlots []int, keyNames []string, valSlot int, valName string, body *ast.Block, depth int) {
	atLeaf := depth == len(keySlots)-1
	lvl.Each(func(key value.Value, isLevel bool, term value.Value, sub *mlm.Map) {
		if e.v.sig != signalNone {
			return
		}
		e.v.Locals.DefineScalar(keySlots[depth], keyNames[depth], value.MaskAny)
		e.v.Locals.AssignScalar(keySlots[depth], key)

		if atLeaf {
			if isLevel {
				return // deeper terminals than configured keys: skipped
			}
			if valSlot >= 0 {
				e.v.Locals.DefineScalar(valSlot, valName, value.MaskAny)
				e.v.Locals.AssignScalar(valSlot, term)
			}
			e.execLoopBody(body)
			if e.v.sig == signalBreak {
				e.v.sig = signalNone
			} else if e.v.sig == signalContinue {
				e.v.sig = signalNone
			}
			return
		}
		if !isLevel {
			return // fewer actual levels than configured keys: no body execution
		}
		e.forNestedLevels(sub, keySlots, keyNames, valSlot, valName, body, depth+1)
	})
}

// execTripleFor runs init/update as statement lists in the current scope
// (no new sub-frame), per spec.md §4.6.2.
func (e *Evaluator) execTripleFor(s *ast.TripleForStatement) {
	for _, init := range s.Init {
		e.execStatement(init)
	}
	for {
		if s.Cond != nil {
			b, ok := strictBool(e.evalExpr(s.Cond))
			if !ok || !b {
				return
			}
		}
		e.execLoopBody(s.Body)
		if e.v.sig == signalBreak {
			e.v.sig = signalNone
			return
		}
		if e.v.sig == signalContinue {
			e.v.sig = signalNone
		} else if e.v.sig != signalNone {
			return
		}
		for _, upd := range s.Update {
			e.execStatement(upd)
		}
	}
}

// --- unset (spec.md §4.6.5) -------------------------------------------------

func (e *Evaluator) execUnset(s *ast.UnsetStatement) {
	for _, tgt := range s.Targets {
		switch tgt.Kind {
		case ast.UnsetLocal:
			e.v.Locals.AssignScalar(tgt.LocalSlot, value.NewAbsent())
		case ast.UnsetOosvar:
			keys := append([]value.Value{value.NewString(tgt.OosvarName)}, e.evalKeys(tgt.OosvarKeys)...)
			e.v.Store.Remove(keys...)
		case ast.UnsetAllOosvars:
			e.v.Store.ClearLevel()
		case ast.UnsetField:
			e.v.Overlay.Unset(tgt.FieldName)
		case ast.UnsetIndirectField:
			nameV := e.evalExpr(tgt.FieldNameExp)
			if name, ok := nameV.AsString(); ok {
				e.v.Overlay.Unset(name)
			}
		case ast.UnsetFullRecord:
			e.v.Overlay.Clear()
		}
	}
}

// --- output (spec.md §4.6.4) -------------------------------------------------

func (e *Evaluator) resolveRedirect(r ast.Redirect) Redirect {
	if r.Mode == "" || r.Target == nil {
		return Redirect{}
	}
	tv := e.evalExpr(r.Target)
	s, _ := tv.AsString()
	return Redirect{Mode: r.Mode, Target: s}
}

func (e *Evaluator) execEmit(s *ast.EmitStatement) {
	if e.v.Sink == nil {
		return
	}
	redirect := e.resolveRedirect(s.Redirect)

	if len(s.Names) > 1 && !s.All {
		e.execEmitLashed(s, redirect)
		return
	}

	for i, name := range s.Names {
		var lvl *mlm.Map
		var ok bool
		if s.All || name == "*" {
			lvl = e.v.Store
			ok = true
		} else {
			base := e.evalKeys(s.BaseKeys[i])
			full := append([]value.Value{value.NewString(name)}, base...)
			lvl, ok = e.v.Store.GetLevel(full...)
		}
		if !ok {
			continue
		}
		if s.WithPrefix {
			rec := record.New()
			mlm.FlattenToRecord(lvl, rec, "", ":", e.v.NumericFormat)
			_ = e.v.Sink.WriteRecord(redirect, rec)
			continue
		}
		for _, rec := range mlm.FlattenGrouped(lvl, name, s.TopNames, e.v.NumericFormat) {
			_ = e.v.Sink.WriteRecord(redirect, rec)
		}
	}
}

// execEmitLashed handles `emit @x, @y, ...`: the named submaps are walked
// in lockstep, one joined record per key shared by every submap at that
// level (spec.md §9 open question (b): "intersection only" is the adopted
// contract where submaps disagree on keys at some level).
func (e *Evaluator) execEmitLashed(s *ast.EmitStatement, redirect Redirect) {
	lvls := make([]*mlm.Map, len(s.Names))
	for i, name := range s.Names {
		base := e.evalKeys(s.BaseKeys[i])
		full := append([]value.Value{value.NewString(name)}, base...)
		lvl, ok := e.v.Store.GetLevel(full...)
		if !ok {
			return // any missing named submap yields no output at all
		}
		lvls[i] = lvl
	}
	recs := lashedEmit(lvls, s.Names, s.TopNames, e.v.NumericFormat)
	for _, rec := range recs {
		_ = e.v.Sink.WriteRecord(redirect, rec)
	}
}

func (e *Evaluator) execEmitf(s *ast.EmitfStatement) {
	if e.v.Sink == nil {
		return
	}
	redirect := e.resolveRedirect(s.Redirect)
	rec := record.New()
	for _, name := range s.Names {
		v, ok := e.v.Store.GetTerminal(value.NewString(name))
		if !ok {
			continue
		}
		rec.Put(name, value.Format(v, e.v.NumericFormat))
	}
	_ = e.v.Sink.WriteRecord(redirect, rec)
}

func (e *Evaluator) execTee(s *ast.TeeStatement) {
	if e.v.Sink == nil {
		return
	}
	redirect := e.resolveRedirect(s.Redirect)
	_ = e.v.Sink.WriteRecord(redirect, e.v.Rec.Copy())
}

func (e *Evaluator) execPrint(s *ast.PrintStatement) {
	if e.v.Sink == nil {
		return
	}
	redirect := e.resolveRedirect(s.Redirect)
	text := ""
	if s.Value != nil {
		text = value.Format(e.evalExpr(s.Value), e.v.NumericFormat)
	}
	if !s.NoNewline {
		text += "\n"
	}
	_ = e.v.Sink.Print(redirect, text)
}

func (e *Evaluator) execDump(s *ast.DumpStatement) {
	if e.v.Sink == nil {
		return
	}
	redirect := e.resolveRedirect(s.Redirect)
	_ = e.v.Sink.Dump(redirect, e.v.Store, e.v.NumericFormat)
}
