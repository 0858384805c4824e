package delivery

// envelope.go defines the inbound and outbound message envelopes for the
// invoice/field-ticket delivery pipeline.

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the kind of document carried by a delivery envelope.
type MessageType string

const (
	MessageTypeUndefined          MessageType = ""
	MessageTypeInvoiceRequest     MessageType = "InvoiceRequest"
	MessageTypeInvoiceResponse    MessageType = "InvoiceResponse"
	MessageTypeFieldTicketRequest MessageType = "FieldTicketRequest"
	MessageTypeFieldTicketReply   MessageType = "FieldTicketResponse"
	MessageTypeSalesOrder         MessageType = "SalesOrder"
	MessageTypeAccountContact     MessageType = "AccountContact"
)

var knownMessageTypes = map[MessageType]bool{
	MessageTypeInvoiceRequest:     true,
	MessageTypeInvoiceResponse:    true,
	MessageTypeFieldTicketRequest: true,
	MessageTypeFieldTicketReply:   true,
	MessageTypeSalesOrder:         true,
	MessageTypeAccountContact:     true,
}

// ParseMessageType parses s into a known MessageType.
func ParseMessageType(s string) (MessageType, error) {
	mt := MessageType(s)
	if !knownMessageTypes[mt] {
		return MessageTypeUndefined, fmt.Errorf("unknown message type %q", s)
	}
	return mt, nil
}

// AttachmentRef points at a supporting document in blob storage.
// The binary content is fetched by the attachment step at encode time.
type AttachmentRef struct {
	Container   string `json:"container"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
}

// DeliveryRequest is the inbound envelope: one invoice or field-ticket
// transmission plus its metadata and supporting-document references.
type DeliveryRequest struct {
	SourceSystemID string          `json:"sourceSystemId"`
	CorrelationID  string          `json:"correlationId"`
	MessageType    string          `json:"messageType"`
	Operation      string          `json:"operation"`
	Timestamp      time.Time       `json:"timestamp"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Attachments    []AttachmentRef `json:"attachments,omitempty"`
}

// Platform returns the platform identifier from the payload, or "" when the
// key is absent. Payload lookups never fail: a missing or malformed key just
// yields the zero value.
func (r *DeliveryRequest) Platform() string {
	return r.payloadString("Platform")
}

// BillingCustomerID returns the billing customer id from the payload, or
// uuid.Nil when the key is absent or not a valid uuid.
func (r *DeliveryRequest) BillingCustomerID() uuid.UUID {
	id, err := uuid.Parse(r.payloadString("BillingCustomerId"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// InvoiceID returns the document number from the payload: the invoice number
// for invoices, the ticket number for field tickets. Returns "" when absent.
func (r *DeliveryRequest) InvoiceID() string {
	if v := r.payloadString("InvoiceProperties", "InvoiceNumber"); v != "" {
		return v
	}
	return r.payloadString("FieldTicketProperties", "TicketNumber")
}

// payloadString walks the payload through the supplied key path and returns
// the string found there, or "" if any step is missing or the wrong shape.
func (r *DeliveryRequest) payloadString(path ...string) string {
	if len(r.Payload) == 0 {
		return ""
	}

	var node any
	if err := json.Unmarshal(r.Payload, &node); err != nil {
		return ""
	}

	for _, key := range path {
		obj, ok := node.(map[string]any)
		if !ok {
			return ""
		}
		node = obj[key]
	}

	s, _ := node.(string)
	return s
}

// DeliveryResponse is the outbound envelope mirroring a processed request.
type DeliveryResponse struct {
	CorrelationID string    `json:"correlationId"`
	MessageType   string    `json:"messageType"`
	Operation     string    `json:"operation"`
	Timestamp     time.Time `json:"timestamp"`
}

// ResponseFor builds the DeliveryResponse for a processed request.
//
// The response message type is derived deterministically from the request's
// type; constructing a response for a non-request message type is an error.
func ResponseFor(req *DeliveryRequest) (*DeliveryResponse, error) {
	mt, err := ParseMessageType(req.MessageType)
	if err != nil {
		return nil, WrapInternalError(err, "cannot build response")
	}

	var responseType MessageType
	switch mt {
	case MessageTypeInvoiceRequest:
		responseType = MessageTypeInvoiceResponse
	case MessageTypeFieldTicketRequest:
		responseType = MessageTypeFieldTicketReply
	default:
		return nil, NewInternalError(fmt.Sprintf("no response type defined for message type %q", req.MessageType))
	}

	return &DeliveryResponse{
		CorrelationID: req.CorrelationID,
		MessageType:   string(responseType),
		Operation:     req.Operation,
		Timestamp:     time.Now().UTC(),
	}, nil
}
