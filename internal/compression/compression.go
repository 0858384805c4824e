package compression

// compression.go implements the content-type-keyed compressor registry used by
// the shared attachment step.
//
// Compressors are registered explicitly at process start; there is no runtime
// discovery. An attachment whose content type has no registered compressor
// passes through uncompressed.

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Compressor compresses one attachment payload.
type Compressor interface {
	// Name identifies the strategy (e.g. "gzip", "zip") for preferred-strategy selection.
	Name() string

	// ContentType is the content type of the compressed output.
	ContentType() string

	// Compress returns the compressed payload. filename is the attachment's
	// preferred filename, used by archive formats that name their entries.
	Compress(filename string, data []byte) ([]byte, error)
}

// Registry maps attachment content types to the compressors that can handle them.
type Registry struct {
	byContentType map[string][]Compressor
}

// NewRegistry creates an empty compressor registry.
func NewRegistry() *Registry {
	return &Registry{byContentType: map[string][]Compressor{}}
}

// Register adds a compressor for the given attachment content type.
// Multiple compressors may be registered per content type; Lookup picks the
// first unless the caller prefers a named strategy.
func (r *Registry) Register(contentType string, c Compressor) {
	r.byContentType[contentType] = append(r.byContentType[contentType], c)
}

// Lookup returns the compressor for contentType. When preferred is non-empty
// only a compressor with that name matches; otherwise the first registered
// compressor for the content type is returned.
func (r *Registry) Lookup(contentType, preferred string) (Compressor, bool) {
	for _, c := range r.byContentType[contentType] {
		if preferred == "" || c.Name() == preferred {
			return c, true
		}
	}
	return nil, false
}

// GzipCompressor compresses payloads with gzip.
type GzipCompressor struct{}

func (GzipCompressor) Name() string        { return "gzip" }
func (GzipCompressor) ContentType() string { return "application/gzip" }

func (GzipCompressor) Compress(_ string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip close failed: %w", err)
	}
	return buf.Bytes(), nil
}

// ZipCompressor wraps the payload in a single-entry zip archive named after
// the attachment.
type ZipCompressor struct{}

func (ZipCompressor) Name() string        { return "zip" }
func (ZipCompressor) ContentType() string { return "application/zip" }

func (ZipCompressor) Compress(filename string, data []byte) ([]byte, error) {
	if filename == "" {
		filename = "attachment"
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	entry, err := w.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("zip entry creation failed: %w", err)
	}
	if _, err := entry.Write(data); err != nil {
		return nil, fmt.Errorf("zip write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zip close failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses GzipCompressor output. Used by tests and diagnostics.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader failed: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
