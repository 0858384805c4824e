package transport

// smtp.go ships encoded invoices as mail.
//
// The invoice's primary part becomes the message body; attachment parts are
// attached. Destination URI form: smtp://host:port

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/wneessen/go-mail"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// SMTPTransport sends encoded invoices over SMTP.
type SMTPTransport struct{}

// NewSMTPTransport creates the SMTP channel transport.
func NewSMTPTransport() *SMTPTransport {
	return &SMTPTransport{}
}

func (t *SMTPTransport) Deliver(ctx context.Context, in *Instructions, invoice *delivery.EncodedInvoice) error {
	dest, err := url.Parse(in.DestinationURI)
	if err != nil {
		return delivery.WrapTransportError(err, "invalid SMTP destination URI")
	}

	port := 587
	if dest.Port() != "" {
		port, err = strconv.Atoi(dest.Port())
		if err != nil {
			return delivery.WrapTransportError(err, "invalid SMTP port")
		}
	}

	primary := invoice.Primary()
	if primary == nil {
		return delivery.NewTransportError("encoded invoice has no primary part to send")
	}

	msg := mail.NewMsg()
	if err := msg.From(in.MailFrom); err != nil {
		return delivery.WrapTransportError(err, "invalid sender address")
	}
	if err := msg.To(in.MailTo...); err != nil {
		return delivery.WrapTransportError(err, "invalid recipient address")
	}

	subject := in.Headers["Subject"]
	if subject == "" {
		subject = "Invoice delivery"
	}
	msg.Subject(subject)

	body, err := io.ReadAll(primary.Body)
	if err != nil {
		return delivery.WrapTransportError(err, "failed to read primary part")
	}
	msg.SetBodyString(mail.ContentType(primary.ContentType), string(body))

	for i, att := range invoice.Attachments() {
		name := att.Filename
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i+1)
		}
		if err := msg.AttachReader(name, att.Body); err != nil {
			return delivery.WrapTransportError(err, fmt.Sprintf("failed to attach %s", name))
		}
	}

	opts := []mail.Option{mail.WithPort(port)}
	username := in.Username
	if username == "" {
		username = in.ClientID
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(in.ClientSecret),
		)
	}

	client, err := mail.NewClient(dest.Hostname(), opts...)
	if err != nil {
		return delivery.WrapTransportError(err, "failed to create SMTP client")
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return delivery.WrapTransportError(err, "SMTP send failed")
	}

	return nil
}
