package output

import (
	"github.com/tabctl/tabctl/internal/dslexec"
	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/record"
)

// modeOf translates the DSL's redirect-mode vocabulary (ast.Redirect.Mode,
// carried unevaluated through dslexec.Redirect) into a Router Mode.
func modeOf(redirectMode string) Mode {
	switch redirectMode {
	case "append":
		return ModeAppend
	case "pipe":
		return ModePipe
	default:
		return ModeWrite
	}
}

// Sink adapts Router to dslexec.Sink, so a Router can be plugged straight
// into dslexec.Variables.Sink without dslexec importing this package (it
// only knows the narrow Sink interface it declares itself).
type Sink struct {
	Router *Router
}

func (s Sink) WriteRecord(redirect dslexec.Redirect, rec *record.Record) error {
	return s.Router.WriteRecord(modeOf(redirect.Mode), redirect.Target, rec)
}

func (s Sink) Print(redirect dslexec.Redirect, text string) error {
	return s.Router.Print(modeOf(redirect.Mode), redirect.Target, text)
}

func (s Sink) Dump(redirect dslexec.Redirect, store *mlm.Map, numericFormat string) error {
	return s.Router.Dump(modeOf(redirect.Mode), redirect.Target, store, numericFormat)
}
