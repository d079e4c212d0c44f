package output

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tabctl/tabctl/internal/record"
)

// sqliteWriter implements the "sqlite:<path>:<table>" output target
// (SPEC_FULL.md §6.3): each WriteRecord call opens (or reuses) a table
// whose columns are created lazily from the first record's field names,
// and inserts one row per record, adding any column seen for the first
// time as a late-added nullable TEXT column.
//
// Grounded on funxy's own modernc.org/sqlite dependency, which that
// interpreter declares for embedding SQL queries inside scripts — a
// feature with no DSL analog here. Repurposed as this sink's storage
// engine so the dependency keeps a concrete, exercised home instead of
// being dropped.
type sqliteWriter struct {
	db      *sql.DB
	table   string
	columns map[string]bool
	order   []string
	encode  RecordEncoder
}

func parseSQLiteTarget(target string) (path, table string, err error) {
	parts := strings.SplitN(target, ":", 3)
	if len(parts) != 3 || parts[0] != "sqlite" || parts[2] == "" {
		return "", "", fmt.Errorf("malformed sqlite target %q, want sqlite:<path>:<table>", target)
	}
	return parts[1], parts[2], nil
}

func newSQLiteWriter(target string, encode RecordEncoder) (*writer, error) {
	path, table, err := parseSQLiteTarget(target)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if !isValidIdent(table) {
		db.Close()
		return nil, fmt.Errorf("invalid sqlite table name %q", table)
	}
	sw := &sqliteWriter{db: db, table: table, columns: map[string]bool{}, encode: encode}
	if _, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (rowid INTEGER PRIMARY KEY)`, table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table %q: %w", table, err)
	}
	return &writer{
		w:      sqliteRecordSink{sw},
		closer: closerFunc(db.Close),
		flush:  func() error { return nil },
	}, nil
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// sqliteRecordSink is an io.Writer in name only: Write discards its bytes.
// Records reach the table through Router.WriteRecord, which calls
// insertRecord directly; text that Print or Dump sends to a sqlite target
// is dropped. This keeps sqliteWriter behind the same writer{} struct as every other
// sink kind instead of special-casing Router.resolve.
type sqliteRecordSink struct {
	sw *sqliteWriter
}

func (s sqliteRecordSink) Write(p []byte) (int, error) {
	return len(p), nil
}

// insertRecord is the real sqlite write path, called directly by Router
// for sqlite targets instead of going through the byte-oriented Write.
func (sw *sqliteWriter) insertRecord(rec *record.Record) error {
	names := rec.Names()
	for _, name := range names {
		if sw.columns[name] {
			continue
		}
		if !isValidIdent(name) {
			return fmt.Errorf("invalid sqlite column name %q", name)
		}
		if _, err := sw.db.Exec(fmt.Sprintf(`ALTER TABLE "%s" ADD COLUMN "%s" TEXT`, sw.table, name)); err != nil {
			return fmt.Errorf("add column %q: %w", name, err)
		}
		sw.columns[name] = true
		sw.order = append(sw.order, name)
	}

	cols := make([]string, 0, len(names))
	placeholders := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		v, _ := rec.Get(name)
		cols = append(cols, fmt.Sprintf(`"%s"`, name))
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}
	query := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`, sw.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	_, err := sw.db.Exec(query, args...)
	return err
}
