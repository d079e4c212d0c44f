// Package stepper implements the per-field running accumulators used by
// the step transformer: delta, from-first, ratio, rsum, counter, and decay.
//
// Grounded directly on original_source/c/mapping/mapper_step.c's step_t
// dispatch table: each C stepper exposes up to four nullable callbacks
// (dprocess for a float-typed value, nprocess for any numeric, sprocess for
// any present string, and an unset/absent hook). This package folds those
// into the single Process method below: value.Value already tags a value
// as empty, numeric, string or absent, so each stepper branches on that
// tag itself instead of the driver probing for optional callbacks.
package stepper

import "github.com/tabctl/tabctl/internal/value"

// Stepper accumulates running state for one input field within one group.
// Process is its only method. The step transformer calls it once per
// record for each configured value field the record carries; a record
// without that field never reaches the stepper.
type Stepper interface {
	// Process consumes one input value and returns the output fields this
	// stepper contributes for this record, in the order they should be
	// appended (a stepper may contribute more than one field, e.g. decay
	// with multiple configured alphas).
	Process(v value.Value) []Output
}

// Output is one named output field contributed by a stepper for a single
// input record.
type Output struct {
	Suffix string // appended to "<input>_" to form the output field name
	Value  value.Value
}

// NewFunc constructs a fresh Stepper instance for one (group, input field)
// pair. params carries stepper-specific configuration (e.g. decay's list
// of alphas); most steppers ignore it.
type NewFunc func(params []string, useFloatZero bool) Stepper

var registry = map[string]NewFunc{
	"delta":      newDelta,
	"from-first": newFromFirst,
	"ratio":      newRatio,
	"rsum":       newRsum,
	"counter":    newCounter,
	"decay":      newDecay,
}

// Lookup returns the constructor registered for name, or nil, false if name
// names no known stepper (spec §7: unknown stepper name is a fatal
// configuration error, reported by the caller via internal/diagnostics).
func Lookup(name string) (NewFunc, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names returns the registered stepper names, for --help / usage text.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	return out
}
