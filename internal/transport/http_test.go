package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

type recordedRequest struct {
	method      string
	contentType string
	disposition string
	partnerID   string
	user        string
	pass        string
	body        string
}

func TestHTTPTransportDeliversEachPart(t *testing.T) {
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, _ := r.BasicAuth()
		requests = append(requests, recordedRequest{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			disposition: r.Header.Get("Content-Disposition"),
			partnerID:   r.Header.Get("X-Trading-Partner"),
			user:        user,
			pass:        pass,
			body:        string(body),
		})
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	attachment := delivery.NewPart([]byte("pdf-bytes"), "application/pdf")
	attachment.IsAttachment = true
	attachment.Filename = "inv123.pdf"
	primary := delivery.NewPart([]byte("<Invoice/>"), "application/xml")
	primary.Filename = "invoice.xml"

	invoice := &delivery.EncodedInvoice{}
	invoice.Append(attachment, primary)
	defer invoice.Close()

	in := &Instructions{
		Channel:        delivery.ChannelTypeHTTP,
		DestinationURI: srv.URL,
		Method:         "POST",
		Headers:        map[string]string{"X-Trading-Partner": "op-77"},
		ClientID:       "client-123",
		ClientSecret:   "s3cret",
	}

	if err := NewHTTPTransport(5 * time.Second).Deliver(context.Background(), in, invoice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}

	first := requests[0]
	if first.contentType != "application/pdf" {
		t.Errorf("expected the attachment first, got content type %s", first.contentType)
	}
	if first.disposition != `attachment; filename="inv123.pdf"` {
		t.Errorf("unexpected disposition %q", first.disposition)
	}
	if first.partnerID != "op-77" {
		t.Errorf("expected custom header on every part")
	}
	if first.user != "client-123" || first.pass != "s3cret" {
		t.Errorf("expected basic auth from the resolved credentials")
	}

	second := requests[1]
	if second.contentType != "application/xml" || second.body != "<Invoice/>" {
		t.Errorf("expected the primary part second")
	}
}

func TestHTTPTransportRejectionIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	invoice := &delivery.EncodedInvoice{}
	invoice.Append(delivery.NewPart([]byte("<Invoice/>"), "application/xml"))
	defer invoice.Close()

	err := NewHTTPTransport(5*time.Second).Deliver(context.Background(),
		&Instructions{DestinationURI: srv.URL, Method: "POST"}, invoice)

	if err == nil {
		t.Fatalf("expected error but got none")
	}
	if delivery.CodeOf(err) != delivery.ErrCodeTransport {
		t.Errorf("expected transport error, got %s", delivery.CodeOf(err))
	}
	if !delivery.IsRetryable(err) {
		t.Errorf("expected transport failures to be retryable")
	}
}

func TestHTTPTransportConnectionFailure(t *testing.T) {
	// A server that is already closed refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	invoice := &delivery.EncodedInvoice{}
	invoice.Append(delivery.NewPart([]byte("<Invoice/>"), "application/xml"))
	defer invoice.Close()

	err := NewHTTPTransport(time.Second).Deliver(context.Background(),
		&Instructions{DestinationURI: srv.URL, Method: "POST"}, invoice)

	if err == nil {
		t.Fatalf("expected error but got none")
	}
	if !delivery.IsRetryable(err) {
		t.Errorf("expected a retryable transport error")
	}
}
