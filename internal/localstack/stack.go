// Package localstack implements the DSL's lexical local-variable stack: a
// stack of fixed-layout, index-addressed frames. Slot layout (count, and
// each slot's declared type mask) is computed once when a function or
// top-level block's CST is built, so at run time a local variable reference
// is a direct slice index rather than a name lookup.
//
// Grounded on funxy's internal/evaluator/environment.go Environment/
// NewEnclosedEnvironment outer-chaining pattern, inverted from name-keyed
// (map[string]Object guarded by a sync.RWMutex) to index-keyed ([]Slot, no
// mutex: this spec's single-threaded-per-pipeline execution model has no
// concurrent frame access, unlike funxy's goroutine-capturing closures).
package localstack

import (
	"fmt"

	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/value"
)

// slotKind distinguishes a scalar local from a map local, since the two
// live in disjoint storage (value.Value vs *mlm.Map) despite sharing one
// index space within a frame.
type slotKind int

const (
	slotScalar slotKind = iota
	slotMap
)

// Slot is one addressable local variable within a frame.
type Slot struct {
	name    string
	kind    slotKind
	mask    value.TypeMask
	scalar  value.Value
	mapVal  *mlm.Map
	defined bool
}

// Frame is one lexical scope: a function body, or a top-level block's
// outermost scope. Frames are pushed on function/subroutine call and block
// entry, and popped on return/exit.
type Frame struct {
	slots []Slot
}

// Stack is the live call/block stack for one record's DSL execution.
type Stack struct {
	frames []*Frame
}

// New returns an empty Stack.
func New() *Stack {
	return &Stack{}
}

// EnterFrame pushes a new frame with the given pre-sized slot layout (built
// at CST-construction time from the statically-known locals of the
// function or block being entered).
func (s *Stack) EnterFrame(size int) {
	s.frames = append(s.frames, &Frame{slots: make([]Slot, size)})
}

// ExitFrame pops the innermost frame.
func (s *Stack) ExitFrame() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// EnterSubframe pushes a block-scoped sub-frame of n additional slots
// nested within the current function frame (e.g. a for-loop's index/key/
// value bindings). Implemented identically to EnterFrame: scoping depth is
// tracked by the caller via stack discipline, not by a distinct frame kind.
func (s *Stack) EnterSubframe(n int) {
	s.EnterFrame(n)
}

// ExitSubframe pops the innermost sub-frame.
func (s *Stack) ExitSubframe() {
	s.ExitFrame()
}

func (s *Stack) top() *Frame {
	if len(s.frames) == 0 {
		panic("localstack: no active frame")
	}
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of active frames.
func (s *Stack) Depth() int { return len(s.frames) }

// DefineScalar declares slot index i in the innermost frame as holding a
// scalar local named name with the given type mask.
func (s *Stack) DefineScalar(i int, name string, mask value.TypeMask) {
	f := s.top()
	f.slots[i] = Slot{name: name, kind: slotScalar, mask: mask, scalar: value.NewAbsent(), defined: true}
}

// DefineMap declares slot index i in the innermost frame as holding a map
// local named name.
func (s *Stack) DefineMap(i int, name string) {
	f := s.top()
	f.slots[i] = Slot{name: name, kind: slotMap, mapVal: mlm.New(), defined: true}
}

// AssignScalar stores v into slot i of the innermost frame; assigning
// Absent leaves the slot unchanged and returns Absent. Returns an error
// Value if the slot was declared as a map, or if v's kind is rejected by
// the slot's declared type mask.
func (s *Stack) AssignScalar(i int, v value.Value) value.Value {
	f := s.top()
	slot := &f.slots[i]
	if slot.kind != slotScalar {
		return value.NewError("cannot assign scalar to map-typed local %q", slot.name)
	}
	if !slot.mask.Accepts(v) {
		return value.NewError("type error: local %q does not accept %s", slot.name, v.Kind())
	}
	if v.IsAbsent() {
		return value.NewAbsent()
	}
	slot.scalar = v
	return v
}

// GetScalar reads slot i's scalar value from the innermost frame.
func (s *Stack) GetScalar(i int) value.Value {
	f := s.top()
	slot := &f.slots[i]
	if slot.kind != slotScalar || !slot.defined {
		return value.NewAbsent()
	}
	return slot.scalar
}

// GetMap returns slot i's map value from the innermost frame.
func (s *Stack) GetMap(i int) (*mlm.Map, error) {
	f := s.top()
	slot := &f.slots[i]
	if slot.kind != slotMap || !slot.defined {
		return nil, fmt.Errorf("local %q is not a map", slot.name)
	}
	return slot.mapVal, nil
}

// Name returns slot i's declared name in the innermost frame, for
// diagnostics.
func (s *Stack) Name(i int) string {
	f := s.top()
	if i < 0 || i >= len(f.slots) {
		return "?"
	}
	return f.slots[i].name
}
