package encoder

// bundle.go merges a PIDX invoice's parts into a single multipart/mixed body.
//
// The XML part comes first, tagged with a deterministic content-id derived
// from the PIDX version; each attachment follows as base64 text. The merged
// body replaces the original part list and the original streams are released.

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// bundleLocationMarker is the fixed Content-Location on the XML part of a
// bundled PIDX body.
const bundleLocationMarker = "PIDXDocument"

// bundleContentID derives the XML part's content-id from the PIDX version:
// version "1.62" yields "pidx-162".
func bundleContentID(version string) string {
	return "pidx-" + strings.ReplaceAll(version, ".", "")
}

// bundleFull collapses the invoice into exactly one multipart/mixed part.
// Every original stream is released, whether bundling succeeds or not.
func bundleFull(invoice *delivery.EncodedInvoice, version string) error {
	primary := invoice.Primary()
	if primary == nil {
		invoice.Close()
		return delivery.NewEncodingError("cannot bundle an invoice with no primary part")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	xmlHeader := textproto.MIMEHeader{}
	xmlHeader.Set("Content-Type", primary.ContentType)
	xmlHeader.Set("Content-ID", fmt.Sprintf("<%s>", bundleContentID(version)))
	xmlHeader.Set("Content-Location", bundleLocationMarker)

	dst, err := w.CreatePart(xmlHeader)
	if err != nil {
		invoice.Close()
		return delivery.WrapEncodingError(err, "failed to create bundle XML part")
	}
	if _, err := io.Copy(dst, primary.Body); err != nil {
		invoice.Close()
		return delivery.WrapEncodingError(err, "failed to copy XML part into bundle")
	}

	for i, att := range invoice.Attachments() {
		name := att.Filename
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i+1)
		}

		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", att.ContentType)
		attHeader.Set("Content-ID", fmt.Sprintf("<%s>", name))
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, name))

		dst, err := w.CreatePart(attHeader)
		if err != nil {
			invoice.Close()
			return delivery.WrapEncodingError(err, fmt.Sprintf("failed to create bundle part for %s", name))
		}

		data, err := io.ReadAll(att.Body)
		if err != nil {
			invoice.Close()
			return delivery.WrapEncodingError(err, fmt.Sprintf("failed to read attachment %s", name))
		}
		if _, err := dst.Write([]byte(base64.StdEncoding.EncodeToString(data))); err != nil {
			invoice.Close()
			return delivery.WrapEncodingError(err, fmt.Sprintf("failed to write attachment %s", name))
		}
	}

	if err := w.Close(); err != nil {
		invoice.Close()
		return delivery.WrapEncodingError(err, "failed to finalize bundle")
	}

	merged := delivery.NewPart(buf.Bytes(), fmt.Sprintf("multipart/mixed; boundary=%s", w.Boundary()))
	merged.Filename = primary.Filename

	return invoice.Replace(merged)
}
