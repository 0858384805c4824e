package encoder

// mail.go encodes the medium as a mail-message JSON envelope.
//
// Unlike the other encoders, attachments are embedded base64-encoded on the
// mail object itself rather than emitted as separate parts: the output is
// always exactly one JSON part.

import (
	"context"
	"encoding/json"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

const (
	mailPartFilename    = "invoice.json"
	mailPartContentType = "application/json"
)

// MailMessage is the mail-message shape the medium deserializes into.
type MailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	ReplyTo string   `json:"replyTo,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`

	Attachments []MailAttachment `json:"attachments,omitempty"`
}

// MailAttachment is an attachment embedded on the mail object. Content is
// base64-encoded by the JSON marshaller.
type MailAttachment struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Content   []byte `json:"content"`
}

// MailEncoder renders the medium as a single mail-envelope JSON part.
type MailEncoder struct {
	attachments *AttachmentFetcher
}

// NewMailEncoder creates a mail encoder using the shared attachment step.
func NewMailEncoder(attachments *AttachmentFetcher) *MailEncoder {
	return &MailEncoder{attachments: attachments}
}

func (e *MailEncoder) EncodeMessage(ctx context.Context, dctx *delivery.Context) (*delivery.EncodedInvoice, error) {
	var message MailMessage
	if err := json.Unmarshal(dctx.Medium, &message); err != nil {
		return nil, delivery.WrapEncodingError(err, "medium is not a mail message")
	}

	fetched, err := e.attachments.Fetch(ctx, dctx)
	if err != nil {
		return nil, err
	}
	for _, att := range fetched {
		message.Attachments = append(message.Attachments, MailAttachment{
			Name:      att.Filename,
			MediaType: att.ContentType,
			Content:   att.Data,
		})
	}

	body, err := json.Marshal(message)
	if err != nil {
		return nil, delivery.WrapEncodingError(err, "failed to marshal mail message")
	}

	part := delivery.NewPart(body, mailPartContentType)
	part.Filename = mailPartFilename
	part.Source = dctx.Medium

	invoice := &delivery.EncodedInvoice{}
	invoice.Append(part)
	return invoice, nil
}
