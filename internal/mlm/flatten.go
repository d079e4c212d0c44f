package mlm

import (
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

// FlattenToRecord writes every terminal in m into rec, joining nested key
// paths with sep and prefixing each with prefix (if non-empty). Used to
// serialize an oosvar submap or a local map variable back out as regular
// record fields (spec.md §4.3's flatten-on-output operation).
func FlattenToRecord(m *Map, rec *record.Record, prefix, sep, numericFormat string) {
	m.Each(func(key value.Value, isLevel bool, term value.Value, level *Map) {
		name := keyString(key)
		if prefix != "" {
			name = prefix + sep + name
		}
		if isLevel {
			FlattenToRecord(level, rec, name, sep, numericFormat)
			return
		}
		rec.Put(name, value.Format(term, numericFormat))
	})
}

// FlattenGrouped implements the emit (non-emitp) contract: walk down
// len(topNames) levels of m, binding each level's key to the corresponding
// topNames column, and at the last configured level emit one record per
// entry combining the bound key columns with that entry's own value —
// named valueName if the entry is itself a terminal (the common case: an
// oosvar indexed only by the emitted group-by keys, spec.md §8 scenario 5),
// or flattened by its own field names (with no outer-key prefixing) if the
// entry is itself a further submap. This is the mirror image of
// FlattenToRecord's emitp behavior, which instead joins every level's key
// into one prefixed name with no column binding at all.
func FlattenGrouped(m *Map, valueName string, topNames []string, numericFormat string) []*record.Record {
	return flattenGroupedLevel(m, valueName, topNames, nil, numericFormat)
}

func flattenGroupedLevel(m *Map, valueName string, topNames []string, bound []record.Record, numericFormat string) []*record.Record {
	if len(topNames) == 0 {
		rec := record.New()
		for _, b := range bound {
			b.Each(func(name, v string) { rec.Put(name, v) })
		}
		FlattenToRecord(m, rec, "", ":", numericFormat)
		return []*record.Record{rec}
	}
	var out []*record.Record
	m.Each(func(key value.Value, isLevel bool, term value.Value, level *Map) {
		col := record.New()
		col.Put(topNames[0], keyString(key))
		nextBound := append(bound, *col)

		if len(topNames) > 1 {
			if !isLevel {
				return // fewer actual levels than configured topNames: skipped
			}
			out = append(out, flattenGroupedLevel(level, valueName, topNames[1:], nextBound, numericFormat)...)
			return
		}

		rec := record.New()
		for _, b := range nextBound {
			b.Each(func(name, v string) { rec.Put(name, v) })
		}
		if isLevel {
			FlattenToRecord(level, rec, "", ":", numericFormat)
		} else {
			rec.Put(valueName, value.Format(term, numericFormat))
		}
		out = append(out, rec)
	})
	return out
}

// FlattenTopNames returns, for a map with at least one submap at the top
// level, the ordered union of second-level key names across all first-level
// submaps — the column header a lashed multi-key emit statement produces
// (spec.md §4.3 / §9 open question (b)).
func FlattenTopNames(m *Map) []string {
	seen := make(map[string]bool)
	var out []string
	m.Each(func(_ value.Value, isLevel bool, _ value.Value, level *Map) {
		if !isLevel {
			return
		}
		for _, k := range level.CopyKeysFromLevel() {
			name := keyString(k)
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	})
	return out
}
