package encoder

// pidx_v162.go implements the PIDX 1.62 version adapter.
//
// 1.62 moved to the pidXML namespace family and added the partner-information
// section and unit-of-measure on line items. The element layout is not
// compatible with 1.00.

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

const (
	pidxV162              = "1.62"
	pidxV162InvoiceNS     = "http://www.pidx.org/schemas/pidXML/v1.62/invoice"
	pidxV162FieldTicketNS = "http://www.pidx.org/schemas/pidXML/v1.62/fieldticket"
)

type pidxV162Adapter struct{}

// NewPIDXv162Adapter creates the version adapter for PIDX 1.62.
func NewPIDXv162Adapter() VersionAdapter {
	return pidxV162Adapter{}
}

func (pidxV162Adapter) Version() string { return pidxV162 }

func (a pidxV162Adapter) Namespaces(messageType delivery.MessageType) (Namespaces, error) {
	switch messageType {
	case delivery.MessageTypeFieldTicketRequest:
		return Namespaces{
			XMLNS:          pidxV162FieldTicketNS,
			XSI:            pidxXSINamespace,
			SchemaLocation: pidxV162FieldTicketNS + " pidxFieldTicket.xsd",
		}, nil
	case delivery.MessageTypeInvoiceRequest, delivery.MessageTypeSalesOrder:
		return Namespaces{
			XMLNS:          pidxV162InvoiceNS,
			XSI:            pidxXSINamespace,
			SchemaLocation: pidxV162InvoiceNS + " pidxInvoice.xsd",
		}, nil
	default:
		return Namespaces{}, delivery.NewEncodingError(fmt.Sprintf("no PIDX 1.62 namespaces for message type %q", messageType))
	}
}

type pidxV162Invoice struct {
	XMLName        xml.Name `xml:"Invoice"`
	XMLNS          string   `xml:"xmlns,attr"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	Version        string   `xml:"version,attr"`

	InvoiceProperties pidxV162InvoiceProperties `xml:"InvoiceProperties"`
	LineItems         []pidxV162LineItem        `xml:"InvoiceDetails>InvoiceLineItem"`
}

type pidxV162InvoiceProperties struct {
	InvoiceNumber string            `xml:"InvoiceNumber"`
	InvoiceDate   string            `xml:"InvoiceDate,omitempty"`
	CurrencyCode  string            `xml:"CurrencyCode,omitempty"`
	TotalAmount   string            `xml:"InvoiceTotal,omitempty"`
	Partners      []pidxV162Partner `xml:"PartnerInformation,omitempty"`
}

type pidxV162Partner struct {
	Role string `xml:"PartnerRoleIndicator,attr"`
	Name string `xml:"PartnerIdentifier>PartnerName"`
	ID   string `xml:"PartnerIdentifier>PartnerIdentifierValue,omitempty"`
}

type pidxV162FieldTicket struct {
	XMLName        xml.Name `xml:"FieldTicket"`
	XMLNS          string   `xml:"xmlns,attr"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	Version        string   `xml:"version,attr"`

	FieldTicketProperties pidxV162FieldTicketProperties `xml:"FieldTicketProperties"`
	LineItems             []pidxV162LineItem            `xml:"FieldTicketDetails>FieldTicketLineItem"`
}

type pidxV162FieldTicketProperties struct {
	TicketNumber   string `xml:"FieldTicketNumber"`
	TicketDate     string `xml:"FieldTicketDate,omitempty"`
	WellIdentifier string `xml:"WellInformation>WellIdentifier,omitempty"`
	JobLocation    string `xml:"JobLocationIdentifier,omitempty"`
}

type pidxV162LineItem struct {
	LineNumber    int    `xml:"LineItemNumber"`
	Description   string `xml:"LineItemDescription,omitempty"`
	Quantity      string `xml:"InvoiceQuantity>Quantity,omitempty"`
	UnitOfMeasure string `xml:"InvoiceQuantity>UnitOfMeasureCode,omitempty"`
	UnitPrice     string `xml:"Pricing>UnitPrice,omitempty"`
	Total         string `xml:"LineItemTotal,omitempty"`
}

func (a pidxV162Adapter) Document(medium []byte, messageType delivery.MessageType) (any, error) {
	ns, err := a.Namespaces(messageType)
	if err != nil {
		return nil, err
	}

	if messageType == delivery.MessageTypeFieldTicketRequest {
		var m pidxFieldTicketMedium
		if err := json.Unmarshal(medium, &m); err != nil {
			return nil, delivery.WrapEncodingError(err, "medium is not a field-ticket document")
		}

		doc := pidxV162FieldTicket{
			XMLNS:          ns.XMLNS,
			XSI:            ns.XSI,
			SchemaLocation: ns.SchemaLocation,
			Version:        pidxV162,
			FieldTicketProperties: pidxV162FieldTicketProperties{
				TicketNumber:   m.FieldTicketProperties.TicketNumber,
				TicketDate:     m.FieldTicketProperties.TicketDate,
				WellIdentifier: m.FieldTicketProperties.WellIdentifier,
				JobLocation:    m.FieldTicketProperties.JobLocation,
			},
		}
		for _, item := range m.LineItems {
			doc.LineItems = append(doc.LineItems, pidxV162LineItemFrom(item))
		}
		return doc, nil
	}

	var m pidxInvoiceMedium
	if err := json.Unmarshal(medium, &m); err != nil {
		return nil, delivery.WrapEncodingError(err, "medium is not an invoice document")
	}

	doc := pidxV162Invoice{
		XMLNS:          ns.XMLNS,
		XSI:            ns.XSI,
		SchemaLocation: ns.SchemaLocation,
		Version:        pidxV162,
		InvoiceProperties: pidxV162InvoiceProperties{
			InvoiceNumber: m.InvoiceProperties.InvoiceNumber,
			InvoiceDate:   m.InvoiceProperties.InvoiceDate,
			CurrencyCode:  m.InvoiceProperties.CurrencyCode,
			TotalAmount:   m.InvoiceProperties.TotalAmount.String(),
		},
	}
	for _, p := range m.PartnerInformation {
		doc.InvoiceProperties.Partners = append(doc.InvoiceProperties.Partners, pidxV162Partner{
			Role: p.Role,
			Name: p.Name,
			ID:   p.ID,
		})
	}
	for _, item := range m.LineItems {
		doc.LineItems = append(doc.LineItems, pidxV162LineItemFrom(item))
	}
	return doc, nil
}

func pidxV162LineItemFrom(item pidxLineItemMedium) pidxV162LineItem {
	return pidxV162LineItem{
		LineNumber:    item.LineNumber,
		Description:   item.Description,
		Quantity:      item.Quantity.String(),
		UnitOfMeasure: item.UnitOfMeasure,
		UnitPrice:     item.UnitPrice.String(),
		Total:         item.Total.String(),
	}
}
