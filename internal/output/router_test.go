package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/tabctl/tabctl/internal/mlm"
	"github.com/tabctl/tabctl/internal/record"
	"github.com/tabctl/tabctl/internal/value"
)

func csvEncode(rec *record.Record) []byte {
	var b strings.Builder
	first := true
	for _, name := range rec.Names() {
		if !first {
			b.WriteByte(',')
		}
		first = false
		v, _ := rec.Get(name)
		b.WriteString(v)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func TestWriteRecordToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, csvEncode, nil)
	rec := record.FromPairs("a", "1", "b", "2")
	if err := r.WriteRecord(ModeWrite, "", rec); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if stdout.String() != "1,2\n" {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestPrintToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, csvEncode, nil)
	if err := r.Print(ModeWrite, "stderr", "oops\n"); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if stderr.String() != "oops\n" {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestWriteRecordToFileWriteThenAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, true, csvEncode, nil)
	rec := record.FromPairs("a", "1")
	if err := r.WriteRecord(ModeWrite, path, rec); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r2 := New(&stdout, &stderr, true, csvEncode, nil)
	if err := r2.WriteRecord(ModeAppend, path, record.FromPairs("a", "2")); err != nil {
		t.Fatalf("WriteRecord append: %v", err)
	}
	if err := r2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "1\n2\n" {
		t.Fatalf("file contents = %q", string(data))
	}
}

func TestWriteRecordGzipRoundTripsThroughCloser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, csvEncode, nil)
	if err := r.WriteRecord(ModeWrite, path, record.FromPairs("a", "1")); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty gzip file")
	}
}

func TestWritersArePooledByTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pooled.txt")
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, true, csvEncode, nil)
	defer r.Close()

	if err := r.WriteRecord(ModeWrite, path, record.FromPairs("a", "1")); err != nil {
		t.Fatalf("WriteRecord 1: %v", err)
	}
	if err := r.WriteRecord(ModeWrite, path, record.FromPairs("a", "2")); err != nil {
		t.Fatalf("WriteRecord 2: %v", err)
	}
	r.mu.Lock()
	n := len(r.writers)
	r.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected one pooled writer, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "1\n2\n" {
		t.Fatalf("file contents = %q", string(data))
	}
}

func TestDumpRendersNestedStore(t *testing.T) {
	store := mlm.New()
	store.PutTerminal([]value.Value{value.NewString("count")}, value.NewInt(3))
	sub := store.GetOrCreateLevel(value.NewString("nested"))
	sub.PutTerminal([]value.Value{value.NewString("inner")}, value.NewString("x"))

	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, csvEncode, nil)
	if err := r.Dump(ModeWrite, "", store, ""); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, `"count"`) || !strings.Contains(out, `"nested"`) || !strings.Contains(out, `"inner"`) {
		t.Fatalf("dump output missing expected keys: %q", out)
	}
}

func TestMalformedSQLiteTargetRejected(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, csvEncode, nil)
	if err := r.WriteRecord(ModeWrite, "sqlite:onlypath", record.FromPairs("a", "1")); err == nil {
		t.Fatal("expected error for malformed sqlite target")
	}
}

// TestPipeSinkLeavesNoGoroutineOrProcessLeak covers the one sink kind that
// starts an os/exec subprocess: Close must wait on it, not just close the
// stdin pipe, or the child (and the goroutines net/os keep alive for it)
// outlives the test. Grounded on mdzesseis-log_capturer_go's
// tests/goroutine_leak_test.go use of goleak.VerifyNone around an
// io-bound subprocess-adjacent resource.
func TestPipeSinkLeavesNoGoroutineOrProcessLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "piped.txt")
	var stdout, stderr bytes.Buffer
	r := New(&stdout, &stderr, false, csvEncode, nil)

	if err := r.WriteRecord(ModePipe, "cat > "+path, record.FromPairs("a", "1")); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "1\n" {
		t.Fatalf("piped file contents = %q", string(data))
	}
}

func TestIsValidIdent(t *testing.T) {
	cases := map[string]bool{
		"foo":      true,
		"foo_bar":  true,
		"_foo":     true,
		"foo2":     true,
		"2foo":     false,
		"foo-bar":  false,
		"":         false,
		"foo bar":  false,
	}
	for in, want := range cases {
		if got := isValidIdent(in); got != want {
			t.Errorf("isValidIdent(%q) = %v, want %v", in, got, want)
		}
	}
}
