package delivery

// encoded.go models the output of an encoder: an owned collection of byte-stream
// parts whose underlying streams must be released exactly once.

import (
	"bytes"
	"encoding/json"
	"io"

	"go.uber.org/multierr"
)

// EncodedPart is one output part of an encoded invoice.
//
// The part owns its body stream until ownership transfers to an EncodedInvoice
// (and from there to whatever last holds the invoice).
type EncodedPart struct {
	// Body is the part's byte stream. Closed exactly once via Close.
	Body io.ReadCloser

	ContentType  string
	IsAttachment bool

	// Filename is the preferred filename for the part, when one exists.
	Filename string

	// Source optionally references the JSON fragment the part was encoded from.
	Source json.RawMessage

	closed bool
}

// NewPart creates a part over an in-memory payload.
func NewPart(data []byte, contentType string) *EncodedPart {
	return &EncodedPart{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: contentType,
	}
}

// Close releases the part's underlying stream. Safe to call more than once;
// the stream is only closed the first time.
func (p *EncodedPart) Close() error {
	if p.closed || p.Body == nil {
		return nil
	}
	p.closed = true
	return p.Body.Close()
}

// EncodedInvoice is the ordered set of parts produced by an encoder.
// Part order is attachments first, primary part last, unless a bundling step
// has already collapsed the set into a single part.
type EncodedInvoice struct {
	Parts []*EncodedPart
}

// Append adds a part, transferring ownership of its stream to the invoice.
func (e *EncodedInvoice) Append(parts ...*EncodedPart) {
	e.Parts = append(e.Parts, parts...)
}

// Primary returns the non-attachment part, or nil when there is none.
func (e *EncodedInvoice) Primary() *EncodedPart {
	for _, p := range e.Parts {
		if !p.IsAttachment {
			return p
		}
	}
	return nil
}

// Attachments returns the attachment parts in order.
func (e *EncodedInvoice) Attachments() []*EncodedPart {
	var out []*EncodedPart
	for _, p := range e.Parts {
		if p.IsAttachment {
			out = append(out, p)
		}
	}
	return out
}

// Replace swaps the part list for a single merged part and releases every
// original stream. Used by bundling steps that collapse the invoice into one
// multipart body.
func (e *EncodedInvoice) Replace(merged *EncodedPart) error {
	err := e.Close()
	e.Parts = []*EncodedPart{merged}
	return err
}

// Close releases every part's stream, collecting any close errors.
func (e *EncodedInvoice) Close() error {
	var err error
	for _, p := range e.Parts {
		err = multierr.Append(err, p.Close())
	}
	return err
}
