package transformer

import (
	"github.com/tabctl/tabctl/internal/output"
	"github.com/tabctl/tabctl/internal/record"
)

// RouterSink adapts an output.Router to the pipeline's terminal Sink,
// writing every record the last stage produces to the default stdout
// destination — the implicit un-redirected output every put/filter/step
// verb produces alongside whatever explicit emit/tee/print statements
// route elsewhere via the same Router (spec.md §5: "shared resources").
type RouterSink struct {
	Router *output.Router
}

func (s RouterSink) Accept(rec *record.Record) error {
	return s.Router.WriteRecord(output.ModeWrite, "", rec)
}
