// Package record implements the ordered field-name/string-value sequence
// that is the unit of streaming, plus its typed overlay (see
// internal/record/overlay.go).
package record

import "github.com/cespare/xxhash/v2"

// field is one entry in a Record: a name/value pair, whose position is its
// index in the backing slice, mirroring the slice-of-fields-with-index pattern used
// for ordered containers throughout this codebase (see internal/mlm).
type field struct {
	name  string
	value string
}

// Record is an ordered mapping from field name to string value, preserving
// first-insertion order. Duplicate keys are not allowed: Put on an existing
// key updates in place. Lookup is O(1) via an explicit hash index.
type Record struct {
	fields []field
	index  map[uint64][]int // xxhash(name) -> candidate positions in fields
}

// New returns an empty Record.
func New() *Record {
	return &Record{index: make(map[uint64][]int)}
}

// FromPairs builds a Record from name/value pairs in order, for tests and
// small literals.
func FromPairs(pairs ...string) *Record {
	if len(pairs)%2 != 0 {
		panic("record.FromPairs: odd number of arguments")
	}
	r := New()
	for i := 0; i < len(pairs); i += 2 {
		r.Put(pairs[i], pairs[i+1])
	}
	return r
}

func hashName(name string) uint64 {
	return xxhash.Sum64String(name)
}

func (r *Record) findIndex(name string) (int, bool) {
	h := hashName(name)
	for _, pos := range r.index[h] {
		if pos < len(r.fields) && r.fields[pos].name == name {
			return pos, true
		}
	}
	return 0, false
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Get returns the value for name and true if present.
func (r *Record) Get(name string) (string, bool) {
	if pos, ok := r.findIndex(name); ok {
		return r.fields[pos].value, true
	}
	return "", false
}

// Has reports whether name is present (regardless of value).
func (r *Record) Has(name string) bool {
	_, ok := r.findIndex(name)
	return ok
}

// Put sets name to value, updating in place if name already exists,
// otherwise appending at the tail (preserving insertion order).
func (r *Record) Put(name, value string) {
	if pos, ok := r.findIndex(name); ok {
		r.fields[pos].value = value
		return
	}
	pos := len(r.fields)
	r.fields = append(r.fields, field{name: name, value: value})
	h := hashName(name)
	r.index[h] = append(r.index[h], pos)
}

// PutHead inserts name=value at the front of the record. If name already
// exists, its existing position is removed first.
func (r *Record) PutHead(name, value string) {
	r.Remove(name)
	r.fields = append([]field{{name: name, value: value}}, r.fields...)
	r.reindex()
}

// Remove deletes name if present.
func (r *Record) Remove(name string) {
	pos, ok := r.findIndex(name)
	if !ok {
		return
	}
	r.fields = append(r.fields[:pos], r.fields[pos+1:]...)
	r.reindex()
}

// Rename changes a field's name while preserving its position and value.
// A no-op if oldName is absent; if newName already exists elsewhere it is
// evicted first (records never hold duplicate keys).
func (r *Record) Rename(oldName, newName string) {
	pos, ok := r.findIndex(oldName)
	if !ok {
		return
	}
	if oldName == newName {
		return
	}
	r.Remove(newName)
	// Removing newName may have shifted pos if newName preceded oldName;
	// recompute from oldName after the removal.
	pos, ok = r.findIndex(oldName)
	if !ok {
		return
	}
	r.fields[pos].name = newName
	r.reindex()
}

// Clear empties the record.
func (r *Record) Clear() {
	r.fields = nil
	r.index = make(map[uint64][]int)
}

// Names returns the field names in insertion order.
func (r *Record) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.name
	}
	return out
}

// Copy deep-copies the record (keys and values, independent backing slice).
func (r *Record) Copy() *Record {
	out := New()
	for _, f := range r.fields {
		out.Put(f.name, f.value)
	}
	return out
}

// Each calls fn for every field in insertion order. fn must not mutate the
// record (callers needing mutation-safe iteration should iterate over a
// Copy, per spec.md's for-loop-over-$* semantics).
func (r *Record) Each(fn func(name, value string)) {
	for _, f := range r.fields {
		fn(f.name, f.value)
	}
}

func (r *Record) reindex() {
	r.index = make(map[uint64][]int, len(r.fields))
	for i, f := range r.fields {
		h := hashName(f.name)
		r.index[h] = append(r.index[h], i)
	}
}
