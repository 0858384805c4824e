package transport

// strategy.go selects the transport channel for a delivery.
//
// Channels are registered explicitly at process start. An unregistered
// channel is a configuration error, deliberately distinguishable from the
// retryable transport errors the channels themselves return.

import (
	"context"
	"fmt"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// Transport ships an encoded invoice over one channel.
type Transport interface {
	Deliver(ctx context.Context, in *Instructions, invoice *delivery.EncodedInvoice) error
}

// Strategy is the channel-type → transport registry.
type Strategy struct {
	channels map[delivery.ChannelType]Transport
}

// NewStrategy creates an empty transport strategy.
func NewStrategy() *Strategy {
	return &Strategy{channels: map[delivery.ChannelType]Transport{}}
}

// Register binds a transport to a channel type. Last registration wins.
func (s *Strategy) Register(t delivery.ChannelType, tr Transport) {
	s.channels[t] = tr
}

// Deliver ships the invoice over the channel named by the instructions.
func (s *Strategy) Deliver(ctx context.Context, in *Instructions, invoice *delivery.EncodedInvoice) error {
	tr, ok := s.channels[in.Channel]
	if !ok || in.Channel == delivery.ChannelTypeUndefined {
		return delivery.NewConfigurationError(fmt.Sprintf("transport channel %q is not supported", in.Channel))
	}
	return tr.Deliver(ctx, in, invoice)
}
