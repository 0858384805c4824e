package transport

// instructions.go resolves an exchange config's transport settings into live,
// transport-specific delivery parameters.

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// Instructions are the resolved, transport-specific delivery parameters for
// one send: destination, verb, headers, and the credentials looked up from
// the secret store.
//
// Instructions are created fresh per send and never persisted.
type Instructions struct {
	Channel        delivery.ChannelType
	DestinationURI string
	Method         string
	Headers        map[string]string
	Username       string
	MailFrom       string
	MailTo         []string

	ClientID     string
	ClientSecret string
	Certificate  *tls.Certificate
	PrivateKey   []byte
}

// ResolveInstructions builds the instructions for one delivery attempt from
// the active configuration's transport settings, resolving every referenced
// secret from the store under the per-installation vault identifier.
func ResolveInstructions(ctx context.Context, secrets SecretStore, vault string, cfg *delivery.DeliveryConfiguration) (*Instructions, error) {
	settings := cfg.Transport

	in := &Instructions{
		Channel:        settings.Channel,
		DestinationURI: settings.DestinationURI,
		Method:         settings.Method,
		Headers:        settings.Headers,
		Username:       settings.Username,
		MailFrom:       settings.MailFrom,
		MailTo:         settings.MailTo,
	}
	if in.Method == "" {
		in.Method = http.MethodPost
	}

	if name := settings.ClientIDSecretName; name != "" {
		v, err := secrets.Secret(ctx, vault, name)
		if err != nil {
			return nil, delivery.WrapTransportError(err, fmt.Sprintf("failed to resolve client id %q", name))
		}
		in.ClientID = v
	}

	if name := settings.ClientSecretSecretName; name != "" {
		v, err := secrets.Secret(ctx, vault, name)
		if err != nil {
			return nil, delivery.WrapTransportError(err, fmt.Sprintf("failed to resolve client secret %q", name))
		}
		in.ClientSecret = v
	}

	if name := settings.CertificateSecretName; name != "" {
		cert, err := secrets.Certificate(ctx, vault, name)
		if err != nil {
			return nil, delivery.WrapTransportError(err, fmt.Sprintf("failed to resolve certificate %q", name))
		}
		in.Certificate = &cert
	}

	if name := settings.PrivateKeySecretName; name != "" {
		v, err := secrets.Secret(ctx, vault, name)
		if err != nil {
			return nil, delivery.WrapTransportError(err, fmt.Sprintf("failed to resolve private key %q", name))
		}
		in.PrivateKey = []byte(v)
	}

	return in, nil
}
