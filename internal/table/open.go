package table

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/storage"
)

// Opener resolves table locations and loads them. Supported locations:
//
//	path/to/table.csv          local file
//	path/to/table.csv.zst      zstd compressed (also .gz)
//	s3://bucket/key.csv[.zst]  S3 object
//	sqlite://file.db#table     SQLite table
//	postgres://dsn#table       PostgreSQL table
type Opener struct {
	opts   Options
	region string
	s3     storage.S3API
	logger *slog.Logger
}

// OpenerOption configures an Opener.
type OpenerOption func(*Opener)

// WithS3Client injects the S3 client used for s3:// locations.
func WithS3Client(c storage.S3API) OpenerOption { return func(o *Opener) { o.s3 = c } }

// WithS3Region sets the region used when the S3 client is created lazily.
func WithS3Region(region string) OpenerOption { return func(o *Opener) { o.region = region } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) OpenerOption { return func(o *Opener) { o.logger = l } }

// NewOpener creates an Opener with the given read options.
func NewOpener(opts Options, options ...OpenerOption) *Opener {
	o := &Opener{
		opts:   opts,
		logger: slog.Default().With("component", "table"),
	}
	for _, fn := range options {
		fn(o)
	}
	return o
}

// Load reads the table of the given kind from location.
func (o *Opener) Load(ctx context.Context, kind domain.TableKind, location string) (*Table, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: no location for %s table", domain.ErrInvalidRequest, kind)
	}

	var (
		t   *Table
		err error
	)
	switch {
	case isSQL(location):
		t, err = o.loadSQL(ctx, kind, location)
	case storage.IsS3(location):
		t, err = o.loadS3(ctx, kind, location)
	default:
		t, err = o.loadFile(kind, location)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Debug("loaded table",
		"table", kind,
		"location", location,
		"rows", t.Len(),
		"dropped", t.Dropped)
	if t.Dropped > 0 {
		o.logger.Warn("dropped incomplete rows", "table", kind, "dropped", t.Dropped)
	}
	return t, nil
}

func (o *Opener) loadFile(kind domain.TableKind, location string) (*Table, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open %s table: %w", kind, err)
	}
	return o.readStream(kind, location, f)
}

func (o *Opener) loadS3(ctx context.Context, kind domain.TableKind, location string) (*Table, error) {
	if o.s3 == nil {
		client, err := storage.NewS3Client(ctx, o.region)
		if err != nil {
			return nil, err
		}
		o.s3 = client
	}
	body, err := storage.GetS3Object(ctx, o.s3, location)
	if err != nil {
		return nil, fmt.Errorf("open %s table: %w", kind, err)
	}
	return o.readStream(kind, location, body)
}

func (o *Opener) readStream(kind domain.TableKind, location string, rc io.ReadCloser) (*Table, error) {
	r, err := storage.Decompress(storage.CodecFor(location), rc)
	if err != nil {
		return nil, fmt.Errorf("open %s table: %w", kind, err)
	}
	defer r.Close()
	return ReadCSV(r, kind, o.opts)
}

// Source binds an Opener to the locations of one report request. It loads
// a table only when asked, so a run that stops at the weights gate never
// opens the remaining locations.
type Source struct {
	opener *Opener
	req    domain.ReportRequest
}

// ForRequest returns the Source for req.
func (o *Opener) ForRequest(req domain.ReportRequest) *Source {
	return &Source{opener: o, req: req}
}

// Load reads the table of the given kind.
func (s *Source) Load(ctx context.Context, kind domain.TableKind) (*Table, error) {
	return s.opener.Load(ctx, kind, s.req.Location(kind))
}

func isSQL(location string) bool {
	return strings.HasPrefix(location, schemeSQLite) ||
		strings.HasPrefix(location, schemePostgres) ||
		strings.HasPrefix(location, schemePostgresql)
}
