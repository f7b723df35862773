package storage

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec is the compression applied to a stored table or report.
type Codec string

const (
	CodecNone Codec = ""
	CodecZstd Codec = "zstd"
	CodecGzip Codec = "gzip"
)

// CodecFor picks the codec from the location's extension.
func CodecFor(location string) Codec {
	switch strings.ToLower(path.Ext(location)) {
	case ".zst", ".zstd":
		return CodecZstd
	case ".gz":
		return CodecGzip
	default:
		return CodecNone
	}
}

// ContentType returns the MIME type for documents stored with c.
func (c Codec) ContentType(plain string) string {
	switch c {
	case CodecZstd:
		return "application/zstd"
	case CodecGzip:
		return "application/gzip"
	default:
		return plain
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// Decompress wraps rc according to codec. Closing the result closes rc.
func Decompress(codec Codec, rc io.ReadCloser) (io.ReadCloser, error) {
	switch codec {
	case CodecZstd:
		d, err := zstd.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return readCloser{Reader: d, close: func() error {
			d.Close()
			return rc.Close()
		}}, nil
	case CodecGzip:
		g, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return readCloser{Reader: g, close: func() error {
			g.Close()
			return rc.Close()
		}}, nil
	default:
		return rc, nil
	}
}

// Compress encodes data according to codec.
func Compress(codec Codec, data []byte) ([]byte, error) {
	switch codec {
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CodecGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to gzip: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to gzip: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return data, nil
	}
}
