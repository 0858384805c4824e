package transport

// transport_test.go holds the fakes shared by the transport tests.

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// fakeSecretStore serves secrets from an in-memory map keyed by "vault/name".
type fakeSecretStore struct {
	secrets map[string]string
	certs   map[string]tls.Certificate
}

func (f *fakeSecretStore) Secret(_ context.Context, vault, name string) (string, error) {
	v, ok := f.secrets[vault+"/"+name]
	if !ok {
		return "", fmt.Errorf("secret %s/%s not found", vault, name)
	}
	return v, nil
}

func (f *fakeSecretStore) Certificate(_ context.Context, vault, name string) (tls.Certificate, error) {
	c, ok := f.certs[vault+"/"+name]
	if !ok {
		return tls.Certificate{}, fmt.Errorf("certificate %s/%s not found", vault, name)
	}
	return c, nil
}

// fakeTransport records deliveries for strategy tests.
type fakeTransport struct {
	deliveries int
}

func (f *fakeTransport) Deliver(_ context.Context, _ *Instructions, _ *delivery.EncodedInvoice) error {
	f.deliveries++
	return nil
}
