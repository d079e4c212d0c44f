package dslexec

import (
	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

// lashedEmit walks lvls (one per lashed `@name`) in lockstep down topNames
// levels, keeping only keys present in every submap at each level (spec.md
// §9 open question (b): adopted "intersection only" contract), and at the
// leaf emits one record per surviving key path combining the topNames
// column bindings with each named submap's own terminals (prefixed by that
// submap's name, since two lashed submaps may otherwise collide on field
// names).
func lashedEmit(lvls []*mlm.Map, names, topNames []string, numericFormat string) []*record.Record {
	return lashedEmitLevel(lvls, names, topNames, record.New(), numericFormat)
}

func lashedEmitLevel(lvls []*mlm.Map, names, topNames []string, bound *record.Record, numericFormat string) []*record.Record {
	if len(topNames) == 0 {
		rec := bound.Copy()
		for i, lvl := range lvls {
			mlm.FlattenToRecord(lvl, rec, names[i], ":", numericFormat)
		}
		return []*record.Record{rec}
	}

	commonKeys := commonSubmapKeys(lvls)
	var out []*record.Record
	for _, key := range commonKeys {
		next := make([]*mlm.Map, len(lvls))
		ok := true
		for i, lvl := range lvls {
			sub, found := lvl.GetLevel(key)
			if !found {
				ok = false
				break
			}
			next[i] = sub
		}
		if !ok {
			continue
		}
		withCol := bound.Copy()
		withCol.Put(topNames[0], value.Format(key, ""))
		out = append(out, lashedEmitLevel(next, names, topNames[1:], withCol, numericFormat)...)
	}
	return out
}

// commonSubmapKeys returns, in the first map's order, the keys that are a
// non-terminal (submap) entry in every one of lvls.
func commonSubmapKeys(lvls []*mlm.Map) []value.Value {
	if len(lvls) == 0 {
		return nil
	}
	var out []value.Value
	for _, key := range lvls[0].CopyKeysFromLevel() {
		inAll := true
		for _, lvl := range lvls {
			if _, ok := lvl.GetLevel(key); !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, key)
		}
	}
	return out
}
