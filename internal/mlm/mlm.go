// Package mlm implements the MultiLevelMap: a recursive ordered mapping
// whose leaves are scalar values and whose interior nodes are themselves
// MultiLevelMaps. It backs both the process-lifetime out-of-stream store
// (@name[...]) and local map variables (internal/localstack).
//
// Grounded on the three-level group-by/value-field/stepper-name nesting
// described in original_source/c/mapping/mapper_step.c's header comment —
// generalized here to arbitrary depth, as spec.md §4.3 requires.
package mlm

import "github.com/tabctl/tabctl/internal/value"

// entry is one slot at a single level: either a terminal value or a nested
// submap, never both (spec.md invariant).
type entry struct {
	key     value.Value
	keyStr  string // formatted form, used for key comparison/lookup
	isLevel bool
	term    value.Value
	level   *Map
}

// Map is one level of a MultiLevelMap: an ordered sequence of entries
// addressed by formatted key, each either a terminal or a nested Map.
type Map struct {
	entries []*entry
	index   map[string]int
}

// New returns an empty Map.
func New() *Map {
	return &Map{index: make(map[string]int)}
}

func keyString(k value.Value) string {
	return value.Format(k, "")
}

func (m *Map) find(k value.Value) (*entry, bool) {
	ks := keyString(k)
	i, ok := m.index[ks]
	if !ok {
		return nil, false
	}
	return m.entries[i], true
}

// GetTerminal resolves keys and returns the terminal value there, with ok
// true only if the full path resolves and the final node is terminal.
func (m *Map) GetTerminal(keys ...value.Value) (value.Value, bool) {
	if len(keys) == 0 {
		return value.Value{}, false
	}
	cur := m
	for i, k := range keys {
		e, ok := cur.find(k)
		if !ok {
			return value.Value{}, false
		}
		last := i == len(keys)-1
		if last {
			if e.isLevel {
				return value.Value{}, false
			}
			return e.term, true
		}
		if !e.isLevel {
			return value.Value{}, false
		}
		cur = e.level
	}
	return value.Value{}, false
}

// GetLevel returns the submap addressed by keys, or nil, false if the path
// doesn't resolve to a non-terminal.
func (m *Map) GetLevel(keys ...value.Value) (*Map, bool) {
	cur := m
	for _, k := range keys {
		e, ok := cur.find(k)
		if !ok || !e.isLevel {
			return nil, false
		}
		cur = e.level
	}
	return cur, true
}

// GetOrCreateLevel walks keys, creating intermediate levels as needed. If an
// addressed node is currently terminal, it is discarded and replaced with a
// fresh submap (spec.md §9 open question (a): silent discard-and-replace).
func (m *Map) GetOrCreateLevel(keys ...value.Value) *Map {
	cur := m
	for _, k := range keys {
		e, ok := cur.find(k)
		if !ok || !e.isLevel {
			newLevel := New()
			cur.set(k, &entry{key: k, keyStr: keyString(k), isLevel: true, level: newLevel})
			cur = newLevel
			continue
		}
		cur = e.level
	}
	return cur
}

// PutTerminal creates intermediate levels as needed and stores v at the
// final key. If the final key currently addresses a non-terminal, that
// whole subtree is discarded (spec.md §9 open question (a)).
func (m *Map) PutTerminal(keys []value.Value, v value.Value) {
	if len(keys) == 0 {
		return
	}
	parent := m
	if len(keys) > 1 {
		parent = m.GetOrCreateLevel(keys[:len(keys)-1]...)
	}
	lastKey := keys[len(keys)-1]
	parent.set(lastKey, &entry{key: lastKey, keyStr: keyString(lastKey), isLevel: false, term: v})
}

func (m *Map) set(k value.Value, e *entry) {
	ks := keyString(k)
	if i, ok := m.index[ks]; ok {
		m.entries[i] = e
		return
	}
	m.index[ks] = len(m.entries)
	m.entries = append(m.entries, e)
}

// Remove deletes the subtree addressed by keys (terminal or non-terminal).
// Empty ancestors are NOT pruned, per spec.md §4.3.
func (m *Map) Remove(keys ...value.Value) {
	if len(keys) == 0 {
		return
	}
	parent := m
	for _, k := range keys[:len(keys)-1] {
		e, ok := parent.find(k)
		if !ok || !e.isLevel {
			return
		}
		parent = e.level
	}
	lastKey := keys[len(keys)-1]
	ks := keyString(lastKey)
	i, ok := parent.index[ks]
	if !ok {
		return
	}
	parent.entries = append(parent.entries[:i], parent.entries[i+1:]...)
	parent.reindex()
}

// ClearLevel empties the map addressed by keys (or this map, if keys is
// empty) in place, preserving the node's identity as a level.
func (m *Map) ClearLevel(keys ...value.Value) {
	lvl := m
	if len(keys) > 0 {
		var ok bool
		lvl, ok = m.GetLevel(keys...)
		if !ok {
			return
		}
	}
	lvl.entries = nil
	lvl.index = make(map[string]int)
}

func (m *Map) reindex() {
	m.index = make(map[string]int, len(m.entries))
	for i, e := range m.entries {
		m.index[e.keyStr] = i
	}
}

// CopyKeysFromLevel returns the ordered list of key Values at this level.
func (m *Map) CopyKeysFromLevel() []value.Value {
	out := make([]value.Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.key
	}
	return out
}

// Len returns the number of entries at this level.
func (m *Map) Len() int { return len(m.entries) }

// Each iterates this level's entries in insertion order, reporting for each
// whether it is a submap (fn receives either a terminal Value or a *Map,
// exactly one of which is valid per call, per isLevel).
func (m *Map) Each(fn func(key value.Value, isLevel bool, term value.Value, level *Map)) {
	for _, e := range m.entries {
		fn(e.key, e.isLevel, e.term, e.level)
	}
}

// CopySubmap deep-copies the submap addressed by keys.
func (m *Map) CopySubmap(keys ...value.Value) (*Map, bool) {
	lvl, ok := m.GetLevel(keys...)
	if !ok {
		return nil, false
	}
	return lvl.deepCopy(), true
}

func (m *Map) deepCopy() *Map {
	out := New()
	for _, e := range m.entries {
		ne := &entry{key: e.key, keyStr: e.keyStr, isLevel: e.isLevel, term: e.term}
		if e.isLevel {
			ne.level = e.level.deepCopy()
		}
		out.index[ne.keyStr] = len(out.entries)
		out.entries = append(out.entries, ne)
	}
	return out
}

// DeepCopy returns an independent copy of the whole map.
func (m *Map) DeepCopy() *Map { return m.deepCopy() }

// CopySubmapInto deep-copies src's submap at srcKeys into dst at dstKeys,
// discarding whatever previously occupied dstKeys (spec.md §4.6.1:
// "oosvar @a[...] = @b[...]").
func CopySubmapInto(dst *Map, dstKeys []value.Value, src *Map, srcKeys []value.Value) bool {
	copied, ok := src.CopySubmap(srcKeys...)
	if !ok {
		return false
	}
	if len(dstKeys) == 0 {
		return false
	}
	parent := dst
	if len(dstKeys) > 1 {
		parent = dst.GetOrCreateLevel(dstKeys[:len(dstKeys)-1]...)
	}
	lastKey := dstKeys[len(dstKeys)-1]
	parent.set(lastKey, &entry{key: lastKey, keyStr: keyString(lastKey), isLevel: true, level: copied})
	return true
}
