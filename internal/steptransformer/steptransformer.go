// Package steptransformer drives internal/stepper across a record stream,
// maintaining the three-level groupByTuple -> valueFieldName -> stepperName
// mapping spec.md §4.5 describes, grounded directly on
// original_source/c/mapping/mapper_step.c's mapper_step_process: group
// lookup-or-create, then per-configured-value-field scratch, then
// per-configured-stepper dispatch in configuration order.
package steptransformer

import (
	"strings"

	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/stepper"
	"github.com/tabctl/tabctl/internal/value"
)

// Config is the step verb's configuration, mirroring its CLI surface
// (spec.md §6: -a, -f, -g, -d, -F).
type Config struct {
	StepperNames  []string // -a
	ValueFields   []string // -f
	GroupByFields []string // -g, optional
	DecayAlphas   []string // -d, default {"0.5"}
	UseFloatZero  bool     // -F
	Policy        value.Policy
}

// group is the per-groupByTuple scratch: one fieldState per configured
// value field.
type group struct {
	fields map[string]*fieldState
}

// fieldState is the per-(group, value field) scratch: one Stepper instance
// per configured stepper name, created lazily on first record that carries
// this field.
type fieldState struct {
	steppers map[string]stepper.Stepper
}

// Transformer streams records through the configured steppers, writing
// derived output fields in place.
type Transformer struct {
	cfg    Config
	groups map[string]*group
}

// New validates cfg against the stepper registry and returns a Transformer.
// An unknown stepper name or a malformed -d alpha is returned as a non-nil
// error (spec §7: fatal configuration/value error); the step command in
// internal/verbs reports it as a diagnostic and returns it.
func New(cfg Config) (*Transformer, error) {
	if len(cfg.DecayAlphas) == 0 {
		cfg.DecayAlphas = []string{"0.5"}
	}
	usesDecay := false
	for _, name := range cfg.StepperNames {
		if _, ok := stepper.Lookup(name); !ok {
			return nil, unknownStepperError(name)
		}
		if name == "decay" {
			usesDecay = true
		}
	}
	if usesDecay {
		if err := stepper.ValidateDecayAlphas(cfg.DecayAlphas); err != nil {
			return nil, err
		}
	}
	return &Transformer{cfg: cfg, groups: make(map[string]*group)}, nil
}

// Config returns the Transformer's validated configuration, for callers
// (internal/transformer's StepTransformer) that need the stepper/value-field
// pairs for observability without this package taking on a metrics import
// itself.
func (t *Transformer) Config() Config {
	return t.cfg
}

func unknownStepperError(name string) error {
	return &unknownStepperErr{name: name}
}

type unknownStepperErr struct{ name string }

func (e *unknownStepperErr) Error() string {
	return "unknown stepper name: " + e.name
}

// groupKey renders the ordered tuple of group-by field values into a single
// lookup key. Returns ok=false if any configured group-by field is absent
// from rec, in which case the record must pass through unchanged (spec §7).
func (t *Transformer) groupKey(rec *record.Record) (string, bool) {
	if len(t.cfg.GroupByFields) == 0 {
		return "", true
	}
	var b strings.Builder
	for i, name := range t.cfg.GroupByFields {
		v, ok := rec.Get(name)
		if !ok {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(v)
	}
	return b.String(), true
}

// Process mutates rec in place, appending each configured stepper's output
// field(s) for each configured value field present in rec. Records missing
// a configured group-by field pass through completely unmodified.
func (t *Transformer) Process(rec *record.Record) {
	key, ok := t.groupKey(rec)
	if !ok {
		return
	}
	g, ok := t.groups[key]
	if !ok {
		g = &group{fields: make(map[string]*fieldState)}
		t.groups[key] = g
	}

	for _, fieldName := range t.cfg.ValueFields {
		raw, present := rec.Get(fieldName)
		if !present {
			continue // spec §4.5 step 2: skip this (field, *) pair entirely
		}

		fs, ok := g.fields[fieldName]
		if !ok {
			fs = &fieldState{steppers: make(map[string]stepper.Stepper)}
			g.fields[fieldName] = fs
		}

		in := value.ParseInferred(raw, t.cfg.Policy)

		for _, stepperName := range t.cfg.StepperNames {
			st, ok := fs.steppers[stepperName]
			if !ok {
				newFn, _ := stepper.Lookup(stepperName) // validated in New
				params := t.cfg.DecayAlphas
				if stepperName != "decay" {
					params = nil
				}
				st = newFn(params, t.cfg.UseFloatZero)
				fs.steppers[stepperName] = st
			}
			for _, out := range st.Process(in) {
				rec.Put(fieldName+"_"+out.Suffix, value.Format(out.Value, ""))
			}
		}
	}
}
