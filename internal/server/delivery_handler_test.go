package server

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/haulage-networks/exchange-delivery/internal/compression"
	"github.com/haulage-networks/exchange-delivery/internal/config"
	"github.com/haulage-networks/exchange-delivery/internal/database"
	"github.com/haulage-networks/exchange-delivery/internal/delivery"
	"github.com/haulage-networks/exchange-delivery/internal/encoder"
	"github.com/haulage-networks/exchange-delivery/internal/pipeline"
	"github.com/haulage-networks/exchange-delivery/internal/transport"
)

type memoryRecordStore struct{}

func (memoryRecordStore) InsertReceived(_ context.Context, _ *database.DeliveryRecord) error {
	return nil
}
func (memoryRecordStore) MarkDelivered(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (memoryRecordStore) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error    { return nil }

type staticResolver struct{ cfg *delivery.ExchangeConfig }

func (s staticResolver) Resolve(_ context.Context, _ string, _ uuid.UUID) (*delivery.ExchangeConfig, error) {
	return s.cfg, nil
}

type noCatalog struct{}

func (noCatalog) SourceFields(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]delivery.SourceField, error) {
	return map[uuid.UUID]delivery.SourceField{}, nil
}
func (noCatalog) DestinationFields(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]delivery.DestinationField, error) {
	return map[uuid.UUID]delivery.DestinationField{}, nil
}
func (noCatalog) ValueFormats(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]delivery.ValueFormat, error) {
	return map[uuid.UUID]delivery.ValueFormat{}, nil
}

type noSecrets struct{}

func (noSecrets) Secret(_ context.Context, _, _ string) (string, error) {
	return "", errors.New("no secrets configured")
}
func (noSecrets) Certificate(_ context.Context, _, _ string) (tls.Certificate, error) {
	return tls.Certificate{}, errors.New("no secrets configured")
}

type noBlobs struct{}

func (noBlobs) Fetch(_ context.Context, _, _ string) ([]byte, error) {
	return nil, errors.New("no blobs configured")
}

type stubTransport struct{ err error }

func (s stubTransport) Deliver(_ context.Context, _ *transport.Instructions, _ *delivery.EncodedInvoice) error {
	return s.err
}

func testServer(t *testing.T, transportErr error) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fetcher := encoder.NewAttachmentFetcher(noBlobs{}, compression.NewRegistry(), logger, 1)
	selector := encoder.NewSelector()
	selector.Register(delivery.AdapterTypeCsv, encoder.NewCSVEncoder(fetcher))

	transports := transport.NewStrategy()
	transports.Register(delivery.ChannelTypeHTTP, stubTransport{err: transportErr})

	cfg := &delivery.ExchangeConfig{
		ID: uuid.New(),
		Invoice: delivery.DeliveryConfiguration{
			AdapterType: delivery.AdapterTypeCsv,
			Transport: delivery.TransportSettings{
				Channel:        delivery.ChannelTypeHTTP,
				DestinationURI: "https://exchange.example.com/invoices",
			},
		},
		FieldTicket: delivery.DeliveryConfiguration{
			AdapterType: delivery.AdapterTypeCsv,
			Transport: delivery.TransportSettings{
				Channel:        delivery.ChannelTypeHTTP,
				DestinationURI: "https://exchange.example.com/tickets",
			},
		},
	}

	orchestrator := pipeline.NewOrchestrator(
		staticResolver{cfg: cfg},
		delivery.NewEnricher(noCatalog{}),
		selector,
		transports,
		noSecrets{},
		"vault-1",
		memoryRecordStore{},
		nil,
		logger,
	)

	serverCfg := &config.ServerEnvironment{
		Environment:         "test",
		Host:                "127.0.0.1",
		Port:                0,
		MaxRequestBodyBytes: 1 << 20,
		RateLimitRPS:        0,
	}

	return NewServer(nil, orchestrator, serverCfg, logger)
}

const deliveryRequestBody = `{
	"sourceSystemId": "erp-west",
	"correlationId": "corr-001",
	"messageType": "InvoiceRequest",
	"operation": "Create",
	"payload": {
		"Platform": "openinvoice",
		"BillingCustomerId": "7d3f9b44-1b9c-4c83-9f1e-2a6cf81a2f10",
		"InvoiceProperties": {"InvoiceNumber": "INV000123"},
		"Rows": [{"Amount": 12.50}]
	}
}`

func postDelivery(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", "/v1/deliveries", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func TestHandleDeliverySuccess(t *testing.T) {
	s := testServer(t, nil)

	rr := postDelivery(t, s, deliveryRequestBody)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp delivery.DeliveryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a delivery response: %v", err)
	}
	if resp.MessageType != "InvoiceResponse" {
		t.Errorf("expected InvoiceResponse, got %s", resp.MessageType)
	}
	if resp.CorrelationID != "corr-001" {
		t.Errorf("expected the request correlation id, got %s", resp.CorrelationID)
	}
}

func TestHandleDeliveryMalformedBody(t *testing.T) {
	s := testServer(t, nil)

	rr := postDelivery(t, s, `{not json`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("response is not an error response: %v", err)
	}
	if errResp.ErrorCode != string(delivery.ErrCodeEncoding) {
		t.Errorf("expected ENC, got %s", errResp.ErrorCode)
	}
}

func TestHandleDeliveryValidationFailure(t *testing.T) {
	s := testServer(t, nil)

	rr := postDelivery(t, s, `{"messageType": "InvoiceRequest"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("response is not an error response: %v", err)
	}
	if errResp.ErrorCode != string(delivery.ErrCodeValidation) {
		t.Errorf("expected VAL, got %s", errResp.ErrorCode)
	}
	if errResp.Retryable {
		t.Errorf("expected validation failures marked non-retryable")
	}
}

func TestHandleDeliveryTransportFailure(t *testing.T) {
	s := testServer(t, delivery.NewTransportError("connection refused"))

	rr := postDelivery(t, s, deliveryRequestBody)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("response is not an error response: %v", err)
	}
	if !errResp.Retryable {
		t.Errorf("expected transport failures marked retryable")
	}
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code delivery.ErrorCode
		want int
	}{
		{delivery.ErrCodeValidation, http.StatusBadRequest},
		{delivery.ErrCodeConfiguration, http.StatusUnprocessableEntity},
		{delivery.ErrCodeEncoding, http.StatusUnprocessableEntity},
		{delivery.ErrCodeAttachment, http.StatusUnprocessableEntity},
		{delivery.ErrCodeTransport, http.StatusBadGateway},
		{delivery.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusForCode(tt.code); got != tt.want {
			t.Errorf("code %s: expected %d, got %d", tt.code, tt.want, got)
		}
	}
}
