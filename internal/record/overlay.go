package record

import "github.com/tabctl/tabctl/internal/value"

// Overlay is a transient typed shadow of a Record used by the DSL while
// processing one record. Reads of $name consult the overlay first, then the
// record's raw string (parsed on demand); writes go to the overlay only.
// Every overlay key is guaranteed to also exist in the underlying record
// (spec.md §3 invariant), so a write installs a placeholder record field to
// preserve field-count/order observability before the overlay is flushed.
type Overlay struct {
	rec    *Record
	typed  map[string]value.Value
	policy value.Policy
}

// NewOverlay creates an overlay bound to rec using policy to lazily infer
// types for reads that haven't been written yet.
func NewOverlay(rec *Record, policy value.Policy) *Overlay {
	return &Overlay{rec: rec, typed: make(map[string]value.Value), policy: policy}
}

// Get reads $name: overlay first, else the record's raw string inferred
// under the overlay's policy. Returns value.NewAbsent() if name is present
// in neither.
func (o *Overlay) Get(name string) value.Value {
	if v, ok := o.typed[name]; ok {
		return v
	}
	if s, ok := o.rec.Get(name); ok {
		return value.ParseInferred(s, o.policy)
	}
	return value.NewAbsent()
}

// Set writes $name = v. Per spec.md §3, assigning Absent is a no-op that
// keeps the prior binding. A new overlay entry that has no backing record
// field installs an empty placeholder so the record's field count/order
// stays observable until flush.
func (o *Overlay) Set(name string, v value.Value) {
	if v.IsAbsent() {
		return
	}
	if !o.rec.Has(name) {
		o.rec.Put(name, "")
	}
	o.typed[name] = v
}

// Unset removes name from both the overlay and the record.
func (o *Overlay) Unset(name string) {
	delete(o.typed, name)
	o.rec.Remove(name)
}

// Clear empties both the overlay and the record (for $* = ... assignment).
func (o *Overlay) Clear() {
	o.typed = make(map[string]value.Value)
	o.rec.Clear()
}

// Flush writes every overlay entry's formatted string back into the
// record, then clears the overlay. Called once at end of record
// processing.
func (o *Overlay) Flush(numericFormat string) {
	for name, v := range o.typed {
		o.rec.Put(name, value.Format(v, numericFormat))
	}
	o.typed = make(map[string]value.Value)
}

// Record returns the underlying record (for callers needing raw-string
// access, e.g. output routing).
func (o *Overlay) Record() *Record { return o.rec }
