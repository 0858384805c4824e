package encoder

// pidx.go encodes the medium as a PIDX XML document.
//
// PIDX is versioned, and the versions are not wire compatible: each version
// defines its own document shape and its own namespace URIs per document kind.
// Version adapters are registered explicitly at process start, keyed by their
// exact decimal version string (e.g. "1.00", "1.62").

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

const (
	pidxPartFilename    = "invoice.xml"
	pidxPartContentType = "application/xml"
)

// Namespaces is the XML namespace set for one PIDX version × document kind.
type Namespaces struct {
	XMLNS          string
	XSI            string
	SchemaLocation string
}

// VersionAdapter converts the medium into one PIDX version's typed document
// and supplies that version's namespaces.
type VersionAdapter interface {
	// Version is the exact decimal version string the adapter is keyed by.
	Version() string

	// Document converts the medium into the version's typed document shape:
	// a field-ticket document for FieldTicketRequest, an invoice document for
	// everything else. The returned value is serialized with encoding/xml.
	Document(medium []byte, messageType delivery.MessageType) (any, error)

	// Namespaces returns the namespace set for the document kind implied by
	// the message type. An unrecognized message type is fatal.
	Namespaces(messageType delivery.MessageType) (Namespaces, error)
}

// PIDXEncoder dispatches to a version-specific adapter and optionally bundles
// the output into a single multipart body.
type PIDXEncoder struct {
	attachments *AttachmentFetcher
	versions    map[string]VersionAdapter
}

// NewPIDXEncoder creates a PIDX encoder with no registered versions.
func NewPIDXEncoder(attachments *AttachmentFetcher) *PIDXEncoder {
	return &PIDXEncoder{
		attachments: attachments,
		versions:    map[string]VersionAdapter{},
	}
}

// RegisterVersion binds a version adapter. Last registration wins.
func (e *PIDXEncoder) RegisterVersion(a VersionAdapter) {
	e.versions[a.Version()] = a
}

func (e *PIDXEncoder) EncodeMessage(ctx context.Context, dctx *delivery.Context) (*delivery.EncodedInvoice, error) {
	cfg := dctx.ActiveConfiguration()

	adapter, ok := e.versions[cfg.AdapterVersion]
	if !ok {
		return nil, delivery.NewConfigurationError(fmt.Sprintf("PIDX version %q is not supported", cfg.AdapterVersion))
	}

	doc, err := adapter.Document(dctx.Medium, dctx.MessageType())
	if err != nil {
		return nil, err
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, delivery.WrapEncodingError(err, "failed to serialize PIDX document")
	}
	body = append([]byte(xml.Header), body...)

	invoice := &delivery.EncodedInvoice{}

	attachmentParts, err := e.attachments.FetchParts(ctx, dctx)
	if err != nil {
		return nil, err
	}
	invoice.Append(attachmentParts...)

	part := delivery.NewPart(body, pidxPartContentType)
	part.Filename = pidxPartFilename
	part.Source = dctx.Medium
	invoice.Append(part)

	// Full bundling: collapse everything into one multipart/mixed body.
	if cfg.Adapter.AcceptsAttachments && cfg.Adapter.EmbedAttachments {
		if err := bundleFull(invoice, cfg.AdapterVersion); err != nil {
			return nil, err
		}
	}

	return invoice, nil
}
