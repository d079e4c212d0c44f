package transformer

import (
	"github.com/tabctl/tabctl/internal/cst"
	"github.com/tabctl/tabctl/internal/dslexec"
	"github.com/tabctl/tabctl/internal/metrics"
	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

// DSLConfig configures one DSLTransformer stage.
type DSLConfig struct {
	Program       *cst.Program
	Policy        value.Policy
	NumericFormat string
	Sink          dslexec.Sink
	Filename      string
	FileNum       int64
	// Negate inverts the filter verb's result (the "-x" CLI flag in
	// spec.md §6's DSL verb surface); ignored for put programs.
	Negate bool
}

// DSLTransformer drives one put/filter CST program across the record
// stream: the begin block runs exactly once before the first record, the
// main block runs once per record, and the end block runs exactly once on
// the end-of-stream sentinel (spec.md §5) — all three sharing one
// process-lifetime oosvar store, one ENV map, and one top-level
// LocalStack frame lifecycle per block kind (begin/main/end each get their
// own frame, sized from cst.Program's computed frame sizes; local
// variables do not persist from one record's main-block run to the next,
// matching the DSL's per-record local scoping).
type DSLTransformer struct {
	cfg   DSLConfig
	funcs map[string]*dslexec.FuncDef
	subrs map[string]*dslexec.SubrDef
	store *mlm.Map
	env   map[string]string

	nr, fnr   int64
	beganOnce bool

	metrics *metrics.Recorder
}

// NewDSLTransformer links the program's func/subr definitions once and
// returns a ready-to-run stage.
func NewDSLTransformer(cfg DSLConfig) *DSLTransformer {
	funcs, subrs := dslexec.Link(cfg.Program.AST)
	return &DSLTransformer{
		cfg:   cfg,
		funcs: funcs,
		subrs: subrs,
		store: mlm.New(),
		env:   make(map[string]string),
	}
}

// WithMetrics attaches a Recorder and returns t for chaining with
// NewDSLTransformer. A nil Recorder keeps every call below a no-op.
func (t *DSLTransformer) WithMetrics(m *metrics.Recorder) *DSLTransformer {
	t.metrics = m
	return t
}

func (t *DSLTransformer) stageLabel() string {
	if t.cfg.Program.Kind == cst.KindFilter {
		return "filter"
	}
	return "put"
}

func (t *DSLTransformer) newVariables(rec *record.Record) *dslexec.Variables {
	v := dslexec.NewVariables(rec, t.store, t.cfg.Policy, t.cfg.NumericFormat)
	v.Funcs = t.funcs
	v.Subrs = t.subrs
	v.Sink = t.cfg.Sink
	v.Env = t.env
	v.Fname = t.cfg.Filename
	v.Fnum = t.cfg.FileNum
	return v
}

// Process implements Transformer. rec == nil is the end-of-stream
// sentinel: it runs the end block (if any) and returns no pass-through
// record.
func (t *DSLTransformer) Process(rec *record.Record) ([]*record.Record, error) {
	if rec == nil {
		if err := t.runEndOnce(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !t.beganOnce {
		if err := t.runBeginOnce(); err != nil {
			return nil, err
		}
		t.beganOnce = true
	}

	t.nr++
	t.fnr++
	t.metrics.RecordProcessed(t.stageLabel())

	v := t.newVariables(rec)
	v.NR = t.nr
	v.FNR = t.fnr
	v.NF = int64(rec.Len())

	v.Locals.EnterFrame(t.cfg.Program.MainFrameSize)
	ev := dslexec.New(t.cfg.Program, v)
	keep := ev.Run()
	v.Locals.ExitFrame()

	t.env = v.Env

	if t.cfg.Program.Kind == cst.KindFilter && t.cfg.Negate {
		keep = !keep
	}
	if !keep {
		return nil, nil
	}

	v.Overlay.Flush(t.cfg.NumericFormat)
	return []*record.Record{v.Rec}, nil
}

func (t *DSLTransformer) runBeginOnce() error {
	if t.cfg.Program.AST.Begin == nil {
		return nil
	}
	v := t.newVariables(record.New())
	v.Locals.EnterFrame(t.cfg.Program.BeginFrameSize)
	dslexec.New(t.cfg.Program, v).RunBlock(t.cfg.Program.AST.Begin)
	v.Locals.ExitFrame()
	t.env = v.Env
	return nil
}

func (t *DSLTransformer) runEndOnce() error {
	if t.cfg.Program.AST.End == nil {
		return nil
	}
	v := t.newVariables(record.New())
	v.Locals.EnterFrame(t.cfg.Program.EndFrameSize)
	dslexec.New(t.cfg.Program, v).RunBlock(t.cfg.Program.AST.End)
	v.Locals.ExitFrame()
	t.env = v.Env
	return nil
}
