package transformer

import (
	"github.com/tabctl/tabctl/internal/metrics"
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/steptransformer"
)

// StepTransformer adapts steptransformer.Transformer (which mutates a
// record in place, adding derived fields) to the pipeline's Transformer
// interface. Steppers never drop or reorder records and have no
// end-of-stream flush (every built-in stepper's state is purely
// incremental — spec.md §4.5 lists no end-of-stream aggregation step), so
// the sentinel is a no-op here.
type StepTransformer struct {
	inner   *steptransformer.Transformer
	metrics *metrics.Recorder
}

// NewStepTransformer wraps a configured steptransformer.Transformer.
func NewStepTransformer(inner *steptransformer.Transformer) *StepTransformer {
	return &StepTransformer{inner: inner}
}

// WithMetrics attaches a Recorder and returns t for chaining with
// NewStepTransformer. A nil Recorder keeps every call below a no-op.
func (t *StepTransformer) WithMetrics(m *metrics.Recorder) *StepTransformer {
	t.metrics = m
	return t
}

func (t *StepTransformer) Process(rec *record.Record) ([]*record.Record, error) {
	if rec == nil {
		return nil, nil
	}
	t.inner.Process(rec)
	t.metrics.RecordProcessed("step")
	if t.metrics != nil {
		cfg := t.inner.Config()
		for _, fieldName := range cfg.ValueFields {
			for _, stepperName := range cfg.StepperNames {
				t.metrics.StepperInvoked(stepperName, fieldName)
			}
		}
	}
	return []*record.Record{rec}, nil
}
