package table

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/ahrav/go-gradebook/internal/domain"
)

const (
	schemeSQLite     = "sqlite://"
	schemePostgres   = "postgres://"
	schemePostgresql = "postgresql://"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sqlLocation is a parsed sqlite:// or postgres:// table location.
type sqlLocation struct {
	driver string
	dsn    string
	table  string
}

// parseSQLLocation splits "<scheme>dsn#table". The table defaults to the
// table kind's name.
func parseSQLLocation(location string, kind domain.TableKind) (sqlLocation, error) {
	base, tbl, _ := strings.Cut(location, "#")
	if tbl == "" {
		tbl = string(kind)
	}
	if !identRe.MatchString(tbl) {
		return sqlLocation{}, fmt.Errorf("%w: invalid table name %q in %s", domain.ErrInvalidRequest, tbl, location)
	}

	switch {
	case strings.HasPrefix(base, schemeSQLite):
		dsn := strings.TrimPrefix(base, schemeSQLite)
		if dsn == "" {
			return sqlLocation{}, fmt.Errorf("%w: missing sqlite path in %s", domain.ErrInvalidRequest, location)
		}
		return sqlLocation{driver: "sqlite", dsn: dsn, table: tbl}, nil
	case strings.HasPrefix(base, schemePostgres), strings.HasPrefix(base, schemePostgresql):
		return sqlLocation{driver: "pgx", dsn: base, table: tbl}, nil
	default:
		return sqlLocation{}, fmt.Errorf("%w: unsupported sql location %s", domain.ErrInvalidRequest, location)
	}
}

// loadSQL reads every row of a database table. NULL cells read as empty and
// are subject to the same incomplete-row policy as CSV input.
func (o *Opener) loadSQL(ctx context.Context, kind domain.TableKind, location string) (*Table, error) {
	loc, err := parseSQLLocation(location, kind)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(loc.driver, loc.dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", kind, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect %s database: %w", kind, err)
	}

	return queryTable(ctx, db, kind, loc.table, o.opts)
}

func queryTable(ctx context.Context, db *sql.DB, kind domain.TableKind, name string, opts Options) (*Table, error) {
	// name is checked against identRe before reaching here.
	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+name+`"`)
	if err != nil {
		return nil, fmt.Errorf("query %s table: %w", kind, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read %s columns: %w", kind, err)
	}

	var records [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]any, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", kind, err)
		}
		rec := make([]string, len(header))
		for i, c := range cells {
			if c.Valid {
				rec[i] = c.String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s rows: %w", kind, err)
	}
	return New(kind, header, records, opts)
}
