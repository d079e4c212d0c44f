// Package verbs wires cobra/pflag CLI commands onto the step transformer and
// the DSL put/filter transformers, matching spec.md §6's verb surface.
//
// spec.md §1 is explicit that argument parsing, format encoders/decoders,
// the DSL lexer/parser, and record-level I/O loops are external
// collaborators, not part of the core this exercise implements end-to-end.
// This package models those seams as injectable fields on Deps rather than
// building a lexer or a CSV/DKVP library: ExprParser is how a put/filter
// expression string becomes an *ast.Program (cmd/tabctl wires a real one;
// tests wire a fake), and Source/Encode are how records enter and leave the
// pipeline (cmd/tabctl wires the minimal DKVP-style default in
// cmd/tabctl/format.go; a production build would swap in real CSV/JSON
// codecs here without touching this package).
//
// Grounded on adest-aes-scripts' cmd/devshell (a cobra.Command per verb,
// flags read via cmd.Flags().GetString/GetBool inside RunE) — the only pack
// repo that models a real multi-subcommand CLI with pflag shorthand flags,
// versus funxy's own hand-rolled os.Args scanning in cmd/funxy/main.go.
package verbs

import (
	"context"
	"io"

	"github.com/tabctl/tabctl/internal/ast"
	"github.com/tabctl/tabctl/internal/config"
	"github.com/tabctl/tabctl/internal/diagnostics"
	"github.com/tabctl/tabctl/internal/metrics"
	"github.com/tabctl/tabctl/internal/output"
	"github.com/tabctl/tabctl/internal/transformer"
)

// ExprParser turns one put/filter expression string into the AST an
// external parser would deliver (spec.md §1: "the parser is a collaborator,
// not part of the core"). cmd/tabctl supplies the real one; unit tests in
// this package supply a literal *ast.Program builder.
type ExprParser func(src string) (*ast.Program, error)

// SourceFactory builds a RecordSource reading from r, for whatever
// line/record format the caller's build wires in (spec.md §1 places format
// decoders out of core scope).
type SourceFactory func(r io.Reader) transformer.RecordSource

// Deps are the collaborators every verb command needs beyond its own flags:
// the run-wide immutable context, diagnostics/metrics sinks, and the I/O
// and parsing seams spec.md leaves external.
type Deps struct {
	RunCtx     *config.RunContext
	Reporter   *diagnostics.Reporter
	Metrics    *metrics.Recorder
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	NewSource  SourceFactory
	Encode     output.RecordEncoder
	ParseExpr  ExprParser
}

// router builds the shared output.Router for one verb invocation, wired
// with this Deps' encoder, streams, and optional metrics.
func (d Deps) router(flushEveryRecord bool) *output.Router {
	return output.New(d.Stdout, d.Stderr, flushEveryRecord, d.Encode, nil).
		WithMetrics(d.Metrics)
}

// runPipeline drives stage against Stdin/Stdout through one Pipeline run.
// The step command uses it; put and filter build their own pipeline so the
// DSL stage's Sink and the pipeline's terminal sink share one Router.
func (d Deps) runPipeline(ctx context.Context, stage transformer.Transformer, flushEveryRecord bool) error {
	src := d.NewSource(d.Stdin)
	defer src.Close()

	router := d.router(flushEveryRecord)
	defer router.Close()

	pipeline := transformer.NewPipeline(stage)
	return pipeline.Run(ctx, src, transformer.RouterSink{Router: router})
}
