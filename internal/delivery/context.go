package delivery

// context.go defines the per-request working set threaded through the pipeline.

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Lookups holds the catalog entities referenced by the active delivery
// configuration's mappings, keyed by id. Populated by the Enricher.
type Lookups struct {
	SourceFields      map[uuid.UUID]SourceField
	DestinationFields map[uuid.UUID]DestinationField
	Formats           map[uuid.UUID]ValueFormat
}

// Context is the mutable per-request working set. It is never shared across
// requests and is not persisted.
//
// The context owns the encoded invoice: Close must run on every exit path so
// the part streams are released regardless of how the pipeline terminated.
type Context struct {
	// RequestID keys the persisted audit record for this delivery.
	RequestID uuid.UUID

	// Request is the original inbound envelope.
	Request *DeliveryRequest

	// Config is the resolved exchange configuration.
	Config *ExchangeConfig

	// Lookups is populated by the Enricher before encoding.
	Lookups Lookups

	// Medium is the working JSON representation of the document, after any
	// pre-processing transform and before format-specific encoding.
	Medium json.RawMessage

	// Encoded is the encoder output. Owned by the context.
	Encoded *EncodedInvoice
}

// NewContext creates the working set for one inbound request. The medium
// starts as the raw request payload.
func NewContext(req *DeliveryRequest) *Context {
	return &Context{
		RequestID: uuid.New(),
		Request:   req,
		Medium:    req.Payload,
	}
}

// MessageType returns the parsed message type of the request, or
// MessageTypeUndefined when it does not parse.
func (c *Context) MessageType() MessageType {
	mt, err := ParseMessageType(c.Request.MessageType)
	if err != nil {
		return MessageTypeUndefined
	}
	return mt
}

// ActiveConfiguration selects the delivery configuration for the request:
// the field-ticket configuration for FieldTicketRequest, the invoice
// configuration for everything else. Returns nil until Config is resolved.
func (c *Context) ActiveConfiguration() *DeliveryConfiguration {
	if c.Config == nil {
		return nil
	}
	if c.MessageType() == MessageTypeFieldTicketRequest {
		return &c.Config.FieldTicket
	}
	return &c.Config.Invoice
}

// Close releases the encoded invoice's streams. Safe to call when nothing was
// encoded, and safe to call more than once.
func (c *Context) Close() error {
	if c.Encoded == nil {
		return nil
	}
	return c.Encoded.Close()
}
