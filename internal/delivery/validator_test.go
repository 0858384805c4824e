package delivery

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func validRequest(t *testing.T) *DeliveryRequest {
	t.Helper()

	return &DeliveryRequest{
		SourceSystemID: "erp-west",
		CorrelationID:  "corr-001",
		MessageType:    string(MessageTypeInvoiceRequest),
		Operation:      "Create",
		Timestamp:      time.Now().UTC(),
		Payload: json.RawMessage(`{
			"Platform": "openinvoice",
			"BillingCustomerId": "7d3f9b44-1b9c-4c83-9f1e-2a6cf81a2f10",
			"InvoiceProperties": {"InvoiceNumber": "INV000123"}
		}`),
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(req *DeliveryRequest)
		wantErrors int
		wantMatch  string
	}{
		{
			name:       "valid request passes",
			mutate:     func(req *DeliveryRequest) {},
			wantErrors: 0,
		},
		{
			name: "unknown message type",
			mutate: func(req *DeliveryRequest) {
				req.MessageType = "PurchaseOrder"
			},
			wantErrors: 1,
			wantMatch:  "not a known message type",
		},
		{
			name: "missing source system id",
			mutate: func(req *DeliveryRequest) {
				req.SourceSystemID = ""
			},
			wantErrors: 1,
			wantMatch:  "sourceSystemId",
		},
		{
			name: "missing platform",
			mutate: func(req *DeliveryRequest) {
				req.Payload = json.RawMessage(`{
					"BillingCustomerId": "7d3f9b44-1b9c-4c83-9f1e-2a6cf81a2f10",
					"InvoiceProperties": {"InvoiceNumber": "INV000123"}
				}`)
			},
			wantErrors: 1,
			wantMatch:  "platform",
		},
		{
			name: "malformed billing customer id",
			mutate: func(req *DeliveryRequest) {
				req.Payload = json.RawMessage(`{
					"Platform": "openinvoice",
					"BillingCustomerId": "not-a-uuid",
					"InvoiceProperties": {"InvoiceNumber": "INV000123"}
				}`)
			},
			wantErrors: 1,
			wantMatch:  "billing customer",
		},
		{
			name: "field ticket number satisfies the document number check",
			mutate: func(req *DeliveryRequest) {
				req.MessageType = string(MessageTypeFieldTicketRequest)
				req.Payload = json.RawMessage(`{
					"Platform": "openinvoice",
					"BillingCustomerId": "7d3f9b44-1b9c-4c83-9f1e-2a6cf81a2f10",
					"FieldTicketProperties": {"TicketNumber": "FT-77"}
				}`)
			},
			wantErrors: 0,
		},
		{
			name: "missing payload collects every payload-derived failure",
			mutate: func(req *DeliveryRequest) {
				req.Payload = nil
			},
			// payload, platform, customer id, document number
			wantErrors: 4,
			wantMatch:  "payload is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(t)
			tt.mutate(req)

			errs := ValidateRequest(req)

			if len(errs) != tt.wantErrors {
				t.Fatalf("expected %d validation errors, got %d: %v", tt.wantErrors, len(errs), errs)
			}
			if tt.wantMatch == "" {
				return
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantMatch) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a failure mentioning %q, got %v", tt.wantMatch, errs)
			}
		})
	}
}

func TestValidateRequestCollectsAllFailures(t *testing.T) {
	// Independently broken fields must each surface; no short-circuiting.
	req := &DeliveryRequest{
		MessageType: "Bogus",
		Payload:     json.RawMessage(`{"Platform": "openinvoice"}`),
	}

	errs := ValidateRequest(req)

	// unknown type, no customer id, no source system, no document number
	if len(errs) != 4 {
		t.Fatalf("expected 4 validation errors, got %d: %v", len(errs), errs)
	}
}
