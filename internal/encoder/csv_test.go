package encoder

import (
	"context"
	"strings"
	"testing"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

func csvConfig(includeHeader, alwaysQuote bool, mappings ...delivery.Mapping) delivery.DeliveryConfiguration {
	return delivery.DeliveryConfiguration{
		AdapterType: delivery.AdapterTypeCsv,
		Adapter: delivery.AdapterSettings{
			IncludeHeaderRow: includeHeader,
			AlwaysQuote:      alwaysQuote,
		},
		Mappings: mappings,
	}
}

func TestCSVEncodeWithMappedColumns(t *testing.T) {
	medium := `{"Rows": [
		{"Amount": 12.50, "Description": "Hauling", "WellId": "W-9"},
		{"Amount": 3, "Description": "Standby"}
	]}`

	cfg := csvConfig(true, false,
		delivery.Mapping{DestinationTitle: "Description", DestinationPosition: 2},
		delivery.Mapping{DestinationTitle: "Amount", DestinationPosition: 1},
	)

	enc := NewCSVEncoder(newTestFetcher(nil))
	invoice, err := enc.EncodeMessage(context.Background(), newTestContext(t, "InvoiceRequest", medium, cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer invoice.Close()

	primary := invoice.Primary()
	if primary == nil {
		t.Fatalf("expected a primary part")
	}
	if primary.ContentType != "text/csv" {
		t.Errorf("expected text/csv, got %s", primary.ContentType)
	}
	if primary.Filename != "invoice.csv" {
		t.Errorf("expected filename invoice.csv, got %s", primary.Filename)
	}

	lines := strings.Split(strings.TrimRight(string(readPart(t, primary)), "\r\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines: %q", len(lines), lines)
	}
	// Mapped columns by destination position, then WellId discovered in row 1.
	if lines[0] != "Amount,Description,WellId" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	// json.Number keeps the wire form: 12.50 stays 12.50, not 12.5.
	if lines[1] != "12.50,Hauling,W-9" {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if lines[2] != "3,Standby," {
		t.Errorf("unexpected second row: %q", lines[2])
	}
}

func TestCSVEncodeDiscoversColumnsInFirstSeenOrder(t *testing.T) {
	medium := `{"Rows": [
		{"B": "1", "A": "2"},
		{"C": "3", "A": "4"}
	]}`

	enc := NewCSVEncoder(newTestFetcher(nil))
	invoice, err := enc.EncodeMessage(context.Background(), newTestContext(t, "InvoiceRequest", medium, csvConfig(true, false)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer invoice.Close()

	out := string(readPart(t, invoice.Primary()))
	header := strings.SplitN(strings.ReplaceAll(out, "\r\n", "\n"), "\n", 2)[0]

	if header != "B,A,C" {
		t.Errorf("expected first-seen column order B,A,C, got %q", header)
	}
}

func TestCSVEncodeAlwaysQuote(t *testing.T) {
	medium := `{"Rows": [{"Name": "plain", "Note": "has \"quotes\""}]}`

	enc := NewCSVEncoder(newTestFetcher(nil))
	invoice, err := enc.EncodeMessage(context.Background(), newTestContext(t, "InvoiceRequest", medium, csvConfig(false, true)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer invoice.Close()

	got := string(readPart(t, invoice.Primary()))
	want := "\"plain\",\"has \"\"quotes\"\"\"\r\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCSVEncodeScalarValues(t *testing.T) {
	medium := `{"Rows": [{"S": "text", "N": 42, "F": 1.25, "B": true, "Z": null}]}`

	enc := NewCSVEncoder(newTestFetcher(nil))
	invoice, err := enc.EncodeMessage(context.Background(), newTestContext(t, "InvoiceRequest", medium, csvConfig(false, false)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer invoice.Close()

	got := strings.TrimRight(string(readPart(t, invoice.Primary())), "\r\n")
	if got != "text,42,1.25,true," {
		t.Errorf("unexpected row: %q", got)
	}
}

func TestCSVEncodeMalformedMedium(t *testing.T) {
	tests := []struct {
		name   string
		medium string
	}{
		{name: "medium is not an object", medium: `[1,2,3]`},
		{name: "row is not an object", medium: `{"Rows": ["flat"]}`},
		{name: "row property is a nested object", medium: `{"Rows": [{"Nested": {"a": 1}}]}`},
		{name: "row property is an array", medium: `{"Rows": [{"List": [1]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewCSVEncoder(newTestFetcher(nil))
			_, err := enc.EncodeMessage(context.Background(), newTestContext(t, "InvoiceRequest", tt.medium, csvConfig(false, false)))

			if err == nil {
				t.Fatalf("expected error but got none")
			}
			if delivery.CodeOf(err) != delivery.ErrCodeEncoding {
				t.Errorf("expected encoding error, got %s", delivery.CodeOf(err))
			}
		})
	}
}

func TestCSVEncodeAppendsAttachmentsBeforePrimary(t *testing.T) {
	blobs := map[string][]byte{"docs/tickets/ft77.pdf": []byte("%PDF-1.4")}

	cfg := csvConfig(false, false)
	cfg.Adapter.AcceptsAttachments = true

	dctx := newTestContext(t, "InvoiceRequest", `{"Rows": [{"A": "1"}]}`, cfg,
		delivery.AttachmentRef{Container: "docs", Path: "tickets/ft77.pdf", ContentType: "application/pdf", Filename: "ft77.pdf"},
	)

	enc := NewCSVEncoder(newTestFetcher(blobs))
	invoice, err := enc.EncodeMessage(context.Background(), dctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer invoice.Close()

	if len(invoice.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(invoice.Parts))
	}
	if !invoice.Parts[0].IsAttachment {
		t.Errorf("expected the attachment part first")
	}
	if invoice.Parts[1].IsAttachment {
		t.Errorf("expected the csv part last")
	}
}
