// Package diagnostics reports the error-kind taxonomy spec.md §7 defines —
// parse-error, semantic-error, type-error, lookup-error, io-error,
// value-error — through a structured sirupsen/logrus logger, grounded on
// mdzesseis-log_capturer_go's logrus usage (tools/http_transport_diagnostic.go's
// logger field, tests/goroutine_leak_test.go's level configuration).
//
// funxy itself has no structured logger: its CLI diagnostics are raw
// fmt.Fprintf(os.Stderr, ...) calls scattered across cmd/funxy/main.go.
// SPEC_FULL.md calls this out as an ambient gap to fill rather than a
// pattern to copy — so this package's shape follows log_capturer, not funxy.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Kind tags one of spec.md §7's six error kinds.
type Kind string

const (
	KindParse    Kind = "parse-error"
	KindSemantic Kind = "semantic-error"
	KindType     Kind = "type-error"
	KindLookup   Kind = "lookup-error"
	KindIO       Kind = "io-error"
	KindValue    Kind = "value-error"
)

// Fatal indicates whether errors of this kind terminate the run before any
// records flow (spec.md §7: "Semantic and parse errors are fatal and
// reported with source location before any records flow ... type-mask
// violations on assignment are fatal ... I/O errors at sink creation are
// fatal; at write time they are fatal to avoid silent data loss"). A lookup
// error (an unknown stepper name) is fatal too. Type errors on strict-bool
// guards and value errors in arithmetic are the two kinds that are not
// fatal by default — the former becomes false-and-continue, the latter
// becomes a propagating Error value.
func (k Kind) Fatal() bool {
	switch k {
	case KindParse, KindSemantic, KindLookup, KindIO:
		return true
	default:
		return false
	}
}

// Pos is a source location, reported alongside parse/semantic errors
// (spec.md §7: "reported with source location").
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is a diagnostic carrying its kind and, where applicable, a source
// location — distinct from a plain Go error so callers can branch on Kind
// without string-matching a message (spec.md §7's taxonomy is "error kinds,
// not type names", but the kind still needs to be inspectable).
type Error struct {
	Kind    Kind
	Pos     Pos
	Message string
}

func (e *Error) Error() string {
	if e.Pos.Line != 0 {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Reporter wraps a logrus.Logger with the taxonomy's fatal/non-fatal split:
// Report logs at Error level for fatal kinds and Trace level for the two
// that merely produce an Error value or a false guard and continue
// (spec.md §7), so a running stream isn't spammed with every propagating
// Error value at normal verbosity.
type Reporter struct {
	log *logrus.Logger
}

// NewReporter builds a Reporter. out is typically os.Stderr; passing nil uses
// logrus's default stderr output.
func NewReporter(out io.Writer, level logrus.Level) *Reporter {
	log := logrus.New()
	if out != nil {
		log.SetOutput(out)
	}
	log.SetLevel(level)
	return &Reporter{log: log}
}

// Report logs one diagnostic at the level appropriate to its kind.
func (r *Reporter) Report(err *Error) {
	entry := r.log.WithField("kind", string(err.Kind))
	if err.Pos.Line != 0 {
		entry = entry.WithField("pos", err.Pos.String())
	}
	if err.Kind.Fatal() {
		entry.Error(err.Message)
		return
	}
	entry.Trace(err.Message)
}

// Fatalf reports a fatal diagnostic and returns it for the caller to use in
// an os.Exit(1) path (this package never calls os.Exit itself — that
// decision belongs to cmd/tabctl, per the same "no global state" note
// internal/config documents for RunContext). Unlike Report, Fatalf always
// logs at Error level regardless of kind: every Fatalf call site is a
// construction-time CLI failure reported before any records flow, not the
// per-record non-fatal value/type diagnostic Kind.Fatal's Trace-level path
// is for.
func (r *Reporter) Fatalf(kind Kind, pos Pos, format string, args ...any) *Error {
	err := New(kind, pos, format, args...)
	entry := r.log.WithField("kind", string(err.Kind))
	if err.Pos.Line != 0 {
		entry = entry.WithField("pos", err.Pos.String())
	}
	entry.Error(err.Message)
	return err
}
