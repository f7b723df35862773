package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ahrav/go-gradebook/internal/domain"
)

// ReadCSV reads a delimited table with a header row.
func ReadCSV(r io.Reader, kind domain.TableKind, opts Options) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.ValidationError{Table: kind, Rule: "schema", Detail: "missing header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", kind, err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", kind, err)
		}
		if isBlank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return New(kind, header, rows, opts)
}

func isBlank(rec []string) bool {
	return len(rec) == 1 && rec[0] == ""
}
