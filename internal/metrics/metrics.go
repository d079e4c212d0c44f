// Package metrics exposes optional prometheus/client_golang counters and
// histograms for the record pipeline: records processed per stage, stepper
// invocations, and writer flushes (spec.md §5's throughput-observability
// ambient concern; SPEC_FULL.md's domain-stack section calls out
// prometheus/client_golang for this).
//
// Grounded on mdzesseis-log_capturer_go's internal/metrics package: a
// package-level prometheus.CounterVec/HistogramVec set plus a small
// safeRegister wrapper that swallows "already registered" panics so tests
// constructing more than one Recorder against the default registry don't
// blow up. Unlike log_capturer's metrics package, which hangs dozens of
// package-level vars off prometheus.DefaultRegisterer, Recorder here is a
// plain struct built with its own *prometheus.Registry — core packages
// (internal/dslexec, internal/steptransformer) take no prometheus import at
// all; only internal/transformer's runtime and internal/output's router
// accept an optional *Recorder, nil-safe throughout so metrics stay purely
// additive.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns one registry's worth of pipeline counters. A nil *Recorder
// is valid everywhere one is accepted — every method is a no-op on a nil
// receiver, so callers that don't want metrics can pass nil instead of a
// disabled/enabled flag threaded through every constructor.
type Recorder struct {
	registry *prometheus.Registry

	recordsProcessed *prometheus.CounterVec
	stepperInvocations *prometheus.CounterVec
	writerFlushes      *prometheus.CounterVec
	writerFlushBytes   *prometheus.HistogramVec
}

// New builds a Recorder against a fresh registry, so multiple Recorders
// (one per test, say) never collide on prometheus.DefaultRegisterer the
// way log_capturer's package-level vars would without its safeRegister/
// sync.Once dance.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	return &Recorder{
		registry: reg,
		recordsProcessed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabctl_records_processed_total",
				Help: "Total records that reached a pipeline stage.",
			},
			[]string{"stage"},
		),
		stepperInvocations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabctl_stepper_invocations_total",
				Help: "Total per-record invocations of a step verb's stepper.",
			},
			[]string{"stepper", "value_field"},
		),
		writerFlushes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabctl_writer_flushes_total",
				Help: "Total output writer flush/close operations, by sink kind.",
			},
			[]string{"sink", "result"},
		),
		writerFlushBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabctl_writer_flush_bytes",
				Help:    "Bytes written per flush, by sink kind.",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"sink"},
		),
	}
}

// RecordProcessed increments the records-processed counter for one pipeline
// stage (a step verb's name, "put", or "filter" — whatever label the caller
// tags its stage with).
func (r *Recorder) RecordProcessed(stage string) {
	if r == nil {
		return
	}
	r.recordsProcessed.WithLabelValues(stage).Inc()
}

// StepperInvoked records one call into a named stepper for a given value
// field (spec.md §4.5: steppers are keyed by stepper name and value field
// within a group-by bucket).
func (r *Recorder) StepperInvoked(stepper, valueField string) {
	if r == nil {
		return
	}
	r.stepperInvocations.WithLabelValues(stepper, valueField).Inc()
}

// WriterFlushed records one flush/close of an output writer, with its
// outcome ("ok" or "error") and the number of bytes written.
func (r *Recorder) WriterFlushed(sink, result string, bytesWritten int) {
	if r == nil {
		return
	}
	r.writerFlushes.WithLabelValues(sink, result).Inc()
	r.writerFlushBytes.WithLabelValues(sink).Observe(float64(bytesWritten))
}

// Handler returns an http.Handler exposing this Recorder's registry in the
// Prometheus text exposition format, for wiring into an optional debug
// listener in cmd/tabctl. Returns nil on a nil Recorder.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return nil
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
