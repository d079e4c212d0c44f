package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestKindFatalSplit(t *testing.T) {
	fatal := []Kind{KindParse, KindSemantic, KindLookup, KindIO}
	nonFatal := []Kind{KindType, KindValue}
	for _, k := range fatal {
		if !k.Fatal() {
			t.Errorf("%s: expected fatal", k)
		}
	}
	for _, k := range nonFatal {
		if k.Fatal() {
			t.Errorf("%s: expected non-fatal", k)
		}
	}
}

func TestErrorStringIncludesPos(t *testing.T) {
	err := New(KindSemantic, Pos{Line: 3, Column: 5}, "break outside loop")
	if got := err.Error(); !strings.Contains(got, "3:5") {
		t.Fatalf("error string %q missing position", got)
	}
}

func TestReportFatalKindLogsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, logrus.TraceLevel)
	r.Report(New(KindIO, Pos{}, "cannot open %q", "/no/such/file"))
	if !strings.Contains(buf.String(), "level=error") {
		t.Fatalf("expected error-level log line, got %q", buf.String())
	}
}

func TestReportNonFatalKindLogsAtTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, logrus.TraceLevel)
	r.Report(New(KindValue, Pos{}, "malformed numeric literal"))
	if !strings.Contains(buf.String(), "level=trace") {
		t.Fatalf("expected trace-level log line, got %q", buf.String())
	}
}
