// Package transformer drives a stream of records through an ordered chain
// of pipeline stages: synchronous, single-threaded, no suspension (spec.md
// §5). An end-of-stream sentinel (nil record) is pushed through the same
// chain exactly once after the last real record, giving every stage a
// single well-defined place to flush begin/end-block state or close
// writers.
//
// Grounded on Carlodf-cetl's transform/transformer.go streaming-iterator
// vocabulary (RecordIterator/Transformer[T]/Mapper[T]) — the one place
// this repo leans on a pack repo other than the teacher, since Carlodf-cetl
// models exactly this "decode → transform → stream" shape, generalized
// here from a fixed decode-then-map chain to an arbitrary stage sequence.
package transformer

import (
	"context"

	"github.com/tabctl/tabctl/internal/record"
)

// RecordSource is a forward-only iterator over input records, mirroring
// Carlodf-cetl's transform.RecordIterator (Next/Record/Err/Close) but
// specialized to this project's own *record.Record rather than a generic
// Extractor.
type RecordSource interface {
	// Next advances to the next record and reports whether one is
	// available. Returns false on EOF or a terminal error; Err must be
	// checked afterward to tell the two apart.
	Next() bool
	// Record returns the current record. Valid only after Next returns
	// true, and only until the next call to Next.
	Record() *record.Record
	// Err returns the first non-EOF error encountered, or nil.
	Err() error
	// Close releases any underlying resources. Safe to call more than once.
	Close() error
}

// Transformer is one pipeline stage: it consumes one record — or nil for
// the end-of-stream sentinel — and produces zero or more records for the
// next stage (spec.md §5's "transformer pipeline" unit).
type Transformer interface {
	Process(rec *record.Record) ([]*record.Record, error)
}

// Sink receives every record produced by the last stage in the chain.
type Sink interface {
	Accept(rec *record.Record) error
}

// Pipeline is an ordered chain of Transformer stages sharing one
// RecordSource and one terminal Sink.
type Pipeline struct {
	stages []Transformer
}

// NewPipeline returns a Pipeline running stages in the given order.
func NewPipeline(stages ...Transformer) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run pulls every record from src, walks it through the stage chain in
// order (preserving each stage's production order, per spec.md §5), then
// walks the nil end-of-stream sentinel through once more so every stage
// gets exactly one chance to run its end-of-stream logic.
func (p *Pipeline) Run(ctx context.Context, src RecordSource, out Sink) error {
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.push(src.Record(), out); err != nil {
			return err
		}
	}
	if err := src.Err(); err != nil {
		return err
	}
	return p.push(nil, out)
}

// push walks one record (or the nil sentinel) through every stage in
// order, fanning out when a stage produces more than one record, and
// delivers whatever survives to out.
func (p *Pipeline) push(rec *record.Record, out Sink) error {
	batch := []*record.Record{rec}
	for _, stage := range p.stages {
		var next []*record.Record
		for _, r := range batch {
			produced, err := stage.Process(r)
			if err != nil {
				return err
			}
			next = append(next, produced...)
		}
		batch = next
	}
	for _, r := range batch {
		if r == nil {
			continue
		}
		if err := out.Accept(r); err != nil {
			return err
		}
	}
	return nil
}
