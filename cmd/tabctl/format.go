package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/transformer"
)

// dkvpSource and dkvpEncode are this build's minimal default record codec:
// one record per line, fields as comma-separated name=value pairs (Miller's
// own DKVP format, the simplest of the formats spec.md §1 places out of
// core scope: "input/output file format encoders/decoders (CSV/TSV/JSON/…)
// ... are external collaborators"). A production build would swap these
// for real format packages without touching internal/verbs, which only
// depends on the SourceFactory/RecordEncoder seam.
func dkvpSource(r io.Reader) transformer.RecordSource {
	scanner := bufio.NewScanner(r)
	return transformer.NewFuncSource(
		func() (*record.Record, bool, error) {
			if !scanner.Scan() {
				return nil, false, scanner.Err()
			}
			return dkvpDecodeLine(scanner.Text()), true, nil
		},
		func() error { return nil },
	)
}

func dkvpDecodeLine(line string) *record.Record {
	rec := record.New()
	if line == "" {
		return rec
	}
	for _, pair := range strings.Split(line, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		rec.Put(name, value)
	}
	return rec
}

func dkvpEncode(rec *record.Record) []byte {
	var b strings.Builder
	first := true
	rec.Each(func(name, value string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&b, "%s=%s", name, value)
	})
	b.WriteByte('\n')
	return []byte(b.String())
}
