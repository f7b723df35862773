// Package table loads the four input tables into namespaced, string-valued
// tables and decodes them into domain records. Loading is the only place
// that touches files, object storage, or databases; everything downstream
// works on the decoded records.
package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ahrav/go-gradebook/internal/domain"
)

// Options controls how raw tables are read.
type Options struct {
	// Delimiter separates CSV fields. Zero means ','.
	Delimiter rune

	// DropIncomplete discards rows with any empty cell instead of failing
	// on them during decoding.
	DropIncomplete bool
}

// DefaultOptions returns the loader defaults: comma separated, incomplete
// rows dropped.
func DefaultOptions() Options {
	return Options{Delimiter: ',', DropIncomplete: true}
}

// Table is a loaded input table. Column names are namespaced with the
// table's prefix (see domain.TableKind.Prefix); rows hold raw cell text.
type Table struct {
	Kind    domain.TableKind
	Columns []string
	Rows    [][]string

	// Dropped counts rows discarded because they were incomplete.
	Dropped int

	index map[string]int
}

// New builds a table from a raw header and rows. Header names are trimmed
// and namespaced; rows shorter or longer than the header are rejected.
func New(kind domain.TableKind, header []string, rows [][]string, opts Options) (*Table, error) {
	t := &Table{
		Kind:    kind,
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		name := kind.Column(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.index[name]; dup {
			return nil, &domain.ValidationError{
				Table:  kind,
				Rule:   "schema",
				Detail: fmt.Sprintf("duplicate column %q", name),
			}
		}
		t.Columns[i] = name
		t.index[name] = i
	}

	t.Rows = make([][]string, 0, len(rows))
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, &domain.ValidationError{
				Table:  kind,
				Rule:   "schema",
				Detail: fmt.Sprintf("row %d has %d fields, header has %d", n+1, len(row), len(header)),
			}
		}
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
		}
		if opts.DropIncomplete && slices.Contains(cells, "") {
			t.Dropped++
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// Len returns the number of retained rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of a namespaced column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// requireColumns resolves raw column names to positions, failing with a
// schema ValidationError naming every missing column.
func (t *Table) requireColumns(raw ...string) ([]int, error) {
	idx := make([]int, len(raw))
	var missing []string
	for i, r := range raw {
		name := t.Kind.Column(r)
		pos, ok := t.index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = pos
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{
			Table:  t.Kind,
			Rule:   "schema",
			Detail: "missing columns " + strings.Join(missing, ", "),
		}
	}
	return idx, nil
}
