// Package emit encodes a finished report and writes it to its destination.
package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/storage"
)

// Stdout is the destination that writes the report to standard output.
const Stdout = "-"

// Encode renders report as JSON. An empty indent produces the compact form.
// Encoding is deterministic: identical reports encode to identical bytes.
func Encode(report domain.Report, indent string) ([]byte, error) {
	if indent == "" {
		return json.Marshal(report)
	}
	return json.MarshalIndent(report, "", indent)
}

// Emitter writes reports to local files, standard output, or S3.
type Emitter struct {
	indent string
	region string
	s3     storage.S3API
	stdout io.Writer
	logger *slog.Logger
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithIndent pretty-prints reports with the given indent.
func WithIndent(indent string) Option { return func(e *Emitter) { e.indent = indent } }

// WithS3Client injects the S3 client used for s3:// destinations.
func WithS3Client(c storage.S3API) Option { return func(e *Emitter) { e.s3 = c } }

// WithS3Region sets the region used when the S3 client is created lazily.
func WithS3Region(region string) Option { return func(e *Emitter) { e.region = region } }

// WithStdout replaces standard output.
func WithStdout(w io.Writer) Option { return func(e *Emitter) { e.stdout = w } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Emitter) { e.logger = l } }

// New creates an Emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		stdout: os.Stdout,
		logger: slog.Default().With("component", "emit"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Emit encodes report and writes it to location. Files ending in .zst or
// .gz are compressed. Local files are replaced atomically so a reader never
// observes a partial report.
func (e *Emitter) Emit(ctx context.Context, report domain.Report, location string) error {
	data, err := Encode(report, e.indent)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if location == Stdout {
		_, err := e.stdout.Write(data)
		return err
	}

	codec := storage.CodecFor(location)
	data, err = storage.Compress(codec, data)
	if err != nil {
		return err
	}

	if storage.IsS3(location) {
		if e.s3 == nil {
			client, err := storage.NewS3Client(ctx, e.region)
			if err != nil {
				return err
			}
			e.s3 = client
		}
		if err := storage.PutS3Object(ctx, e.s3, location, data, codec.ContentType("application/json")); err != nil {
			return err
		}
	} else if err := writeFileAtomic(location, data); err != nil {
		return err
	}

	e.logger.Debug("report written", "output", location, "bytes", len(data))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move report to %s: %w", path, err)
	}
	return nil
}
