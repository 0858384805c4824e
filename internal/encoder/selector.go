package encoder

// selector.go maps adapter types to encoder implementations.
//
// Encoders are registered explicitly at process start. Registering a second
// encoder for the same adapter type replaces the first (last registration
// wins); selecting an unregistered type is a fatal configuration error.

import (
	"context"
	"fmt"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// Encoder transforms a delivery context's medium into an encoded invoice.
//
// Encoders do not retry: any failure abandons the whole delivery attempt.
type Encoder interface {
	EncodeMessage(ctx context.Context, dctx *delivery.Context) (*delivery.EncodedInvoice, error)
}

// Selector is the adapter-type → encoder registry.
type Selector struct {
	encoders map[delivery.AdapterType]Encoder
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{encoders: map[delivery.AdapterType]Encoder{}}
}

// Register binds an encoder to an adapter type. Last registration wins.
func (s *Selector) Register(t delivery.AdapterType, e Encoder) {
	s.encoders[t] = e
}

// Select returns the encoder for the adapter type, or a configuration error
// naming the unsupported type.
func (s *Selector) Select(t delivery.AdapterType) (Encoder, error) {
	e, ok := s.encoders[t]
	if !ok || t == delivery.AdapterTypeUndefined {
		return nil, delivery.NewConfigurationError(fmt.Sprintf("adapter type %q is not supported", t))
	}
	return e, nil
}
