package transformer

import "github.com/tabctl/tabctl/internal/record"

// SliceSource is a RecordSource over an in-memory slice, used by tests and
// by any caller that has already materialized its input records (e.g. a
// decoder that reads a whole file up front).
type SliceSource struct {
	recs []*record.Record
	i    int
}

// NewSliceSource returns a RecordSource that yields recs in order.
func NewSliceSource(recs []*record.Record) *SliceSource {
	return &SliceSource{recs: recs, i: -1}
}

func (s *SliceSource) Next() bool {
	s.i++
	return s.i < len(s.recs)
}

func (s *SliceSource) Record() *record.Record { return s.recs[s.i] }
func (s *SliceSource) Err() error             { return nil }
func (s *SliceSource) Close() error           { return nil }

// FuncSource adapts a pull function (e.g. a CSV/DKVP line reader) into a
// RecordSource: next returns (rec, ok, err); ok=false with err=nil means
// clean EOF.
type FuncSource struct {
	next    func() (*record.Record, bool, error)
	closeFn func() error
	cur     *record.Record
	err     error
}

// NewFuncSource builds a RecordSource around a decoder's pull function.
func NewFuncSource(next func() (*record.Record, bool, error), closeFn func() error) *FuncSource {
	return &FuncSource{next: next, closeFn: closeFn}
}

func (s *FuncSource) Next() bool {
	if s.err != nil {
		return false
	}
	rec, ok, err := s.next()
	if err != nil {
		s.err = err
		return false
	}
	if !ok {
		return false
	}
	s.cur = rec
	return true
}

func (s *FuncSource) Record() *record.Record { return s.cur }
func (s *FuncSource) Err() error             { return s.err }
func (s *FuncSource) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// SliceSink collects every accepted record into a slice, used by tests.
type SliceSink struct {
	Recs []*record.Record
}

func (s *SliceSink) Accept(rec *record.Record) error {
	s.Recs = append(s.Recs, rec)
	return nil
}
