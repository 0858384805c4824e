package transport

// http.go ships encoded invoices over HTTP(S).

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// HTTPTransport sends each part of the encoded invoice as one HTTP request
// using the verb and headers from the instructions. A bundled invoice (one
// part) therefore becomes exactly one request.
type HTTPTransport struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPTransport creates the HTTP channel transport.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (t *HTTPTransport) Deliver(ctx context.Context, in *Instructions, invoice *delivery.EncodedInvoice) error {
	client := t.client
	if in.Certificate != nil {
		// Mutual TLS: a per-send client carrying the resolved certificate.
		client = &http.Client{
			Timeout: t.timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					Certificates: []tls.Certificate{*in.Certificate},
					MinVersion:   tls.VersionTLS12,
				},
			},
		}
	}

	for i, part := range invoice.Parts {
		req, err := http.NewRequestWithContext(ctx, in.Method, in.DestinationURI, part.Body)
		if err != nil {
			return delivery.WrapTransportError(err, "failed to build HTTP request")
		}

		req.Header.Set("Content-Type", part.ContentType)
		if part.Filename != "" {
			req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, part.Filename))
		}
		for k, v := range in.Headers {
			req.Header.Set(k, v)
		}
		if in.ClientID != "" {
			req.SetBasicAuth(in.ClientID, in.ClientSecret)
		}

		resp, err := client.Do(req)
		if err != nil {
			return delivery.WrapTransportError(err, fmt.Sprintf("HTTP send of part %d failed", i))
		}
		resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			return delivery.NewTransportError(fmt.Sprintf(
				"destination rejected part %d with status %d", i, resp.StatusCode))
		}
	}

	return nil
}
