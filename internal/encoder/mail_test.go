package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

func mailConfig(acceptsAttachments bool) delivery.DeliveryConfiguration {
	return delivery.DeliveryConfiguration{
		AdapterType: delivery.AdapterTypeMailMessage,
		Adapter: delivery.AdapterSettings{
			AcceptsAttachments: acceptsAttachments,
		},
	}
}

func TestMailEncodeProducesSinglePart(t *testing.T) {
	medium := `{
		"from": "billing@haulage.example.com",
		"to": ["ap@operator.example.com"],
		"subject": "Invoice INV000123",
		"body": "Please find the invoice attached."
	}`

	enc := NewMailEncoder(newTestFetcher(nil))
	invoice, err := enc.EncodeMessage(context.Background(), newTestContext(t, "InvoiceRequest", medium, mailConfig(false)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer invoice.Close()

	if len(invoice.Parts) != 1 {
		t.Fatalf("expected exactly 1 part, got %d", len(invoice.Parts))
	}

	part := invoice.Primary()
	if part.ContentType != "application/json" {
		t.Errorf("expected application/json, got %s", part.ContentType)
	}
	if part.Filename != "invoice.json" {
		t.Errorf("expected filename invoice.json, got %s", part.Filename)
	}

	var message MailMessage
	if err := json.Unmarshal(readPart(t, part), &message); err != nil {
		t.Fatalf("part is not a mail message: %v", err)
	}
	if message.Subject != "Invoice INV000123" {
		t.Errorf("unexpected subject %q", message.Subject)
	}
	if len(message.To) != 1 || message.To[0] != "ap@operator.example.com" {
		t.Errorf("unexpected recipients %v", message.To)
	}
}

func TestMailEncodeEmbedsAttachments(t *testing.T) {
	content := []byte("%PDF-1.4 test document")
	blobs := map[string][]byte{"docs/invoices/inv123.pdf": content}

	medium := `{
		"from": "billing@haulage.example.com",
		"to": ["ap@operator.example.com"],
		"subject": "Invoice INV000123",
		"body": "See attached."
	}`

	dctx := newTestContext(t, "InvoiceRequest", medium, mailConfig(true),
		delivery.AttachmentRef{Container: "docs", Path: "invoices/inv123.pdf", ContentType: "application/pdf", Filename: "inv123.pdf"},
	)

	enc := NewMailEncoder(newTestFetcher(blobs))
	invoice, err := enc.EncodeMessage(context.Background(), dctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer invoice.Close()

	// Attachments ride on the mail object, never as separate parts.
	if len(invoice.Parts) != 1 {
		t.Fatalf("expected exactly 1 part, got %d", len(invoice.Parts))
	}

	var message MailMessage
	if err := json.Unmarshal(readPart(t, invoice.Primary()), &message); err != nil {
		t.Fatalf("part is not a mail message: %v", err)
	}
	if len(message.Attachments) != 1 {
		t.Fatalf("expected 1 embedded attachment, got %d", len(message.Attachments))
	}

	att := message.Attachments[0]
	if att.Name != "inv123.pdf" {
		t.Errorf("unexpected attachment name %q", att.Name)
	}
	if att.MediaType != "application/pdf" {
		t.Errorf("unexpected media type %q", att.MediaType)
	}
	if !bytes.Equal(att.Content, content) {
		t.Errorf("attachment content does not round-trip")
	}
}

func TestMailEncodeMalformedMedium(t *testing.T) {
	enc := NewMailEncoder(newTestFetcher(nil))
	_, err := enc.EncodeMessage(context.Background(), newTestContext(t, "InvoiceRequest", `["not","a","mail"]`, mailConfig(false)))

	if err == nil {
		t.Fatalf("expected error but got none")
	}
	if delivery.CodeOf(err) != delivery.ErrCodeEncoding {
		t.Errorf("expected encoding error, got %s", delivery.CodeOf(err))
	}
}
