package stepper

import (
	"fmt"

	"github.com/tabctl/tabctl/internal/value"
)

func zeroValue(useFloatZero bool) value.Value {
	if useFloatZero {
		return value.NewFloat(0)
	}
	return value.NewInt(0)
}

// --- delta ---------------------------------------------------------------

type deltaStepper struct {
	useFloatZero bool
	started      bool
	prev         value.Value
}

func newDelta(_ []string, useFloatZero bool) Stepper {
	return &deltaStepper{useFloatZero: useFloatZero}
}

func (s *deltaStepper) Process(v value.Value) []Output {
	if v.IsEmpty() {
		return []Output{{Suffix: "delta", Value: value.NewEmpty()}}
	}
	if !v.IsNumeric() {
		return []Output{{Suffix: "delta", Value: value.NewError("non-numeric input to delta")}}
	}
	if !s.started {
		s.started = true
		s.prev = v
		return []Output{{Suffix: "delta", Value: zeroValue(s.useFloatZero)}}
	}
	d := value.Sub(v, s.prev)
	s.prev = v
	return []Output{{Suffix: "delta", Value: d}}
}

// --- from-first ------------------------------------------------------------

type fromFirstStepper struct {
	useFloatZero bool
	started      bool
	first        value.Value
}

func newFromFirst(_ []string, useFloatZero bool) Stepper {
	return &fromFirstStepper{useFloatZero: useFloatZero}
}

func (s *fromFirstStepper) Process(v value.Value) []Output {
	if v.IsEmpty() {
		return []Output{{Suffix: "from_first", Value: value.NewEmpty()}}
	}
	if !v.IsNumeric() {
		return []Output{{Suffix: "from_first", Value: value.NewError("non-numeric input to from-first")}}
	}
	if !s.started {
		s.started = true
		s.first = v
		return []Output{{Suffix: "from_first", Value: zeroValue(s.useFloatZero)}}
	}
	return []Output{{Suffix: "from_first", Value: value.Sub(v, s.first)}}
}

// --- ratio -----------------------------------------------------------------

type ratioStepper struct {
	started bool
	prev    float64
}

func newRatio(_ []string, _ bool) Stepper {
	return &ratioStepper{}
}

func (s *ratioStepper) Process(v value.Value) []Output {
	if v.IsEmpty() {
		return []Output{{Suffix: "ratio", Value: value.NewEmpty()}}
	}
	f, ok := v.NumericFloat()
	if !ok {
		return []Output{{Suffix: "ratio", Value: value.NewError("non-numeric input to ratio")}}
	}
	if !s.started {
		s.started = true
		s.prev = f
		return []Output{{Suffix: "ratio", Value: value.NewFloat(1.0)}}
	}
	var r float64
	if s.prev != 0 {
		r = f / s.prev
	}
	s.prev = f
	return []Output{{Suffix: "ratio", Value: value.NewFloat(r)}}
}

// --- rsum --------------------------------------------------------------------

type rsumStepper struct {
	useFloatZero bool
	sum          value.Value
}

func newRsum(_ []string, useFloatZero bool) Stepper {
	return &rsumStepper{useFloatZero: useFloatZero, sum: zeroValue(useFloatZero)}
}

func (s *rsumStepper) Process(v value.Value) []Output {
	if v.IsEmpty() {
		return []Output{{Suffix: "rsum", Value: value.NewEmpty()}}
	}
	if !v.IsNumeric() {
		return []Output{{Suffix: "rsum", Value: value.NewError("non-numeric input to rsum")}}
	}
	s.sum = value.Add(s.sum, v)
	return []Output{{Suffix: "rsum", Value: s.sum}}
}

// --- counter -----------------------------------------------------------------

// counterStepper counts any present field regardless of whether it parses
// as numeric, matching the C step_counter_sprocess hook's string-presence
// probe rather than a numeric one. step_counter_alloc seeds both counter and
// one as mv_from_float when allow_int_float is false, so under -F every
// output must stay float-typed rather than snapping back to int.
type counterStepper struct {
	useFloatZero bool
	count        value.Value
	one          value.Value
}

func newCounter(_ []string, useFloatZero bool) Stepper {
	one := value.NewInt(1)
	if useFloatZero {
		one = value.NewFloat(1)
	}
	return &counterStepper{useFloatZero: useFloatZero, count: zeroValue(useFloatZero), one: one}
}

func (s *counterStepper) Process(v value.Value) []Output {
	if v.IsAbsent() {
		return nil
	}
	s.count = value.Add(s.count, s.one)
	return []Output{{Suffix: "counter", Value: s.count}}
}

// --- decay ---------------------------------------------------------------

type decayStepper struct {
	alphaStrs []string
	alphas    []float64
	started   bool
	prev      []float64
}

// DecayAlphaError reports a -d value that doesn't parse as a number, kept
// as a distinct type so callers can report it as spec.md §7's value-error
// kind rather than the lookup-error kind an unknown stepper name gets.
type DecayAlphaError struct{ Alpha string }

func (e *DecayAlphaError) Error() string {
	return fmt.Sprintf("decay: malformed alpha %q is not a number", e.Alpha)
}

// ValidateDecayAlphas reports a non-nil error if any alpha string fails to
// parse as a number, so the CLI caller can reject it before any records
// flow (spec.md §7: a malformed numeric literal is a fatal value-error, not
// a silent default) instead of newDecay coercing it.
func ValidateDecayAlphas(alphas []string) error {
	for _, a := range alphas {
		if _, ok := value.ParseStrict(a).AsFloat(); !ok {
			return &DecayAlphaError{Alpha: a}
		}
	}
	return nil
}

func newDecay(params []string, _ bool) Stepper {
	alphas := make([]float64, len(params))
	for i, p := range params {
		// Assumed valid: steptransformer.New calls ValidateDecayAlphas
		// before any decayStepper is constructed.
		f, _ := value.ParseStrict(p).AsFloat()
		alphas[i] = f
	}
	return &decayStepper{alphaStrs: params, alphas: alphas, prev: make([]float64, len(params))}
}

func (s *decayStepper) Process(v value.Value) []Output {
	out := make([]Output, len(s.alphaStrs))
	if v.IsEmpty() {
		for i, a := range s.alphaStrs {
			out[i] = Output{Suffix: "decay_" + a, Value: value.NewEmpty()}
		}
		return out
	}
	f, ok := v.NumericFloat()
	if !ok {
		for i, a := range s.alphaStrs {
			out[i] = Output{Suffix: "decay_" + a, Value: value.NewError("non-numeric input to decay")}
		}
		return out
	}
	if !s.started {
		s.started = true
		for i := range s.alphas {
			s.prev[i] = f
		}
		for i, a := range s.alphaStrs {
			out[i] = Output{Suffix: "decay_" + a, Value: value.NewFloat(f)}
		}
		return out
	}
	for i, alpha := range s.alphas {
		curr := alpha*f + (1-alpha)*s.prev[i]
		s.prev[i] = curr
		out[i] = Output{Suffix: "decay_" + s.alphaStrs[i], Value: value.NewFloat(curr)}
	}
	return out
}
