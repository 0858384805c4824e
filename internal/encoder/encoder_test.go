package encoder

// encoder_test.go holds the fakes and builders shared by the encoder tests.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/haulage-networks/exchange-delivery/internal/compression"
	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// fakeBlobStore serves attachment content from an in-memory map keyed by
// "container/path". Missing keys fail the fetch.
type fakeBlobStore struct {
	blobs map[string][]byte
}

func (f *fakeBlobStore) Fetch(_ context.Context, container, path string) ([]byte, error) {
	data, ok := f.blobs[container+"/"+path]
	if !ok {
		return nil, fmt.Errorf("blob %s/%s not found", container, path)
	}
	return data, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(blobs map[string][]byte) *AttachmentFetcher {
	registry := compression.NewRegistry()
	return NewAttachmentFetcher(&fakeBlobStore{blobs: blobs}, registry, testLogger(), 2)
}

// newTestContext builds a delivery context with the config already resolved.
func newTestContext(t *testing.T, messageType string, medium string, cfg delivery.DeliveryConfiguration, attachments ...delivery.AttachmentRef) *delivery.Context {
	t.Helper()

	req := &delivery.DeliveryRequest{
		SourceSystemID: "erp-west",
		CorrelationID:  "corr-001",
		MessageType:    messageType,
		Operation:      "Create",
		Timestamp:      time.Now().UTC(),
		Payload:        json.RawMessage(medium),
		Attachments:    attachments,
	}

	dctx := delivery.NewContext(req)
	if messageType == string(delivery.MessageTypeFieldTicketRequest) {
		dctx.Config = &delivery.ExchangeConfig{FieldTicket: cfg}
	} else {
		dctx.Config = &delivery.ExchangeConfig{Invoice: cfg}
	}
	return dctx
}

func readPart(t *testing.T, part *delivery.EncodedPart) []byte {
	t.Helper()

	data, err := io.ReadAll(part.Body)
	if err != nil {
		t.Fatalf("failed to read part: %v", err)
	}
	return data
}
