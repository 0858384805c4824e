package delivery

// exchange_config.go defines the per-customer invoice exchange configuration
// that drives formatting and transport for a delivery.
//
// How these records are authored and how the four scope levels are resolved to
// a single config is external to this package: the pipeline receives an
// already-resolved config through the ConfigResolver interface.

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AdapterType identifies the target wire format for a delivery.
type AdapterType string

const (
	AdapterTypeUndefined    AdapterType = "Undefined"
	AdapterTypePidx         AdapterType = "Pidx"
	AdapterTypeCsv          AdapterType = "Csv"
	AdapterTypeOpenApi      AdapterType = "OpenApi"
	AdapterTypeHttpEndpoint AdapterType = "HttpEndpoint"
	AdapterTypeMailMessage  AdapterType = "MailMessage"
)

// ChannelType identifies the transport channel for a delivery.
type ChannelType string

const (
	ChannelTypeUndefined ChannelType = "Undefined"
	ChannelTypeHTTP      ChannelType = "Http"
	ChannelTypeSFTP      ChannelType = "Sftp"
	ChannelTypeSMTP      ChannelType = "Smtp"
)

// ScopeLevel is the level at which an exchange config applies, broad to
// narrow: Global, BusinessStream, LegalEntity, Customer.
type ScopeLevel string

const (
	ScopeGlobal         ScopeLevel = "Global"
	ScopeBusinessStream ScopeLevel = "BusinessStream"
	ScopeLegalEntity    ScopeLevel = "LegalEntity"
	ScopeCustomer       ScopeLevel = "Customer"
)

// Mapping maps one source field onto one destination column/element.
type Mapping struct {
	SourceFieldID       uuid.UUID `json:"sourceFieldId"`
	DestinationFieldID  uuid.UUID `json:"destinationFieldId"`
	DestinationTitle    string    `json:"destinationTitle"`
	DestinationPosition int       `json:"destinationPosition"`

	// FormatID optionally references a value format; uuid.Nil when unset.
	FormatID uuid.UUID `json:"formatId,omitempty"`
}

// AdapterSettings carries the format-specific knobs for a delivery configuration.
type AdapterSettings struct {
	AcceptsAttachments bool  `json:"acceptsAttachments"`
	EmbedAttachments   bool  `json:"embedAttachments"`
	MaxAttachmentSize  int64 `json:"maxAttachmentSize" validate:"gte=0"`

	// PreferredCompression optionally narrows the compressor choice to a
	// named strategy (e.g. "gzip"); empty means any registered compressor.
	PreferredCompression string `json:"preferredCompression,omitempty"`

	IncludeHeaderRow  bool   `json:"includeHeaderRow"`
	AlwaysQuote       bool   `json:"alwaysQuote"`
	DestinationAPIURI string `json:"destinationApiUri" validate:"omitempty,uri"`
}

// TransportSettings carries the channel selection and the references that are
// resolved into live transport instructions at send time.
//
// Secret-name fields reference entries in the secret store; the secret values
// themselves are never stored on the config.
type TransportSettings struct {
	Channel        ChannelType       `json:"channel" validate:"required"`
	DestinationURI string            `json:"destinationUri" validate:"required,uri"`
	Method         string            `json:"method,omitempty" validate:"omitempty,oneof=POST PUT PATCH"`
	Headers        map[string]string `json:"headers,omitempty"`
	Username       string            `json:"username,omitempty"`
	MailFrom       string            `json:"mailFrom,omitempty" validate:"omitempty,email"`
	MailTo         []string          `json:"mailTo,omitempty" validate:"dive,email"`

	ClientIDSecretName     string `json:"clientIdSecretName,omitempty"`
	ClientSecretSecretName string `json:"clientSecretSecretName,omitempty"`
	CertificateSecretName  string `json:"certificateSecretName,omitempty"`
	PrivateKeySecretName   string `json:"privateKeySecretName,omitempty"`
}

// DeliveryConfiguration describes how one document kind (invoice or field
// ticket) is encoded and shipped for the owning exchange config.
type DeliveryConfiguration struct {
	AdapterType    AdapterType       `json:"adapterType" validate:"required"`
	AdapterVersion string            `json:"adapterVersion,omitempty"`
	Adapter        AdapterSettings   `json:"adapterSettings"`
	Transport      TransportSettings `json:"transportSettings"`
	Mappings       []Mapping         `json:"mappings,omitempty"`
}

// SourceFieldIDs returns the distinct source field ids referenced by the mappings.
func (c *DeliveryConfiguration) SourceFieldIDs() []uuid.UUID {
	return distinctIDs(c.Mappings, func(m Mapping) uuid.UUID { return m.SourceFieldID })
}

// DestinationFieldIDs returns the distinct destination field ids referenced by the mappings.
func (c *DeliveryConfiguration) DestinationFieldIDs() []uuid.UUID {
	return distinctIDs(c.Mappings, func(m Mapping) uuid.UUID { return m.DestinationFieldID })
}

// FormatIDs returns the distinct value-format ids referenced by the mappings.
func (c *DeliveryConfiguration) FormatIDs() []uuid.UUID {
	return distinctIDs(c.Mappings, func(m Mapping) uuid.UUID { return m.FormatID })
}

func distinctIDs(mappings []Mapping, pick func(Mapping) uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(mappings))
	ids := make([]uuid.UUID, 0, len(mappings))
	for _, m := range mappings {
		id := pick(m)
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// ExchangeConfig is the resolved per-scope exchange configuration, carrying
// one delivery configuration for invoices and one for field tickets.
type ExchangeConfig struct {
	ID               uuid.UUID  `json:"id"`
	Scope            ScopeLevel `json:"scope"`
	CustomerID       uuid.UUID  `json:"customerId,omitempty"`
	LegalEntityID    uuid.UUID  `json:"legalEntityId,omitempty"`
	BusinessStreamID uuid.UUID  `json:"businessStreamId,omitempty"`

	Invoice     DeliveryConfiguration `json:"invoice"`
	FieldTicket DeliveryConfiguration `json:"fieldTicket"`
}

var validate = validator.New()

// Validate checks the structural constraints on the config (adapter types
// present, URIs well formed, verbs limited to POST/PUT/PATCH).
func (c *ExchangeConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return WrapConfigurationError(err, fmt.Sprintf("exchange config %s is invalid", c.ID))
	}
	return nil
}

// ConfigResolver resolves the applicable exchange config for a request's
// platform and billing customer. The four-level scope precedence lives behind
// this interface; absence of a matching config is a fatal configuration error.
type ConfigResolver interface {
	Resolve(ctx context.Context, platform string, customerID uuid.UUID) (*ExchangeConfig, error)
}
