package encoder

// pidx_v100.go implements the PIDX 1.00 version adapter.
//
// 1.00 is the original schema generation: flat invoice and field-ticket
// documents with no partner section and no unit-of-measure on line items.

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

const (
	pidxV100               = "1.00"
	pidxV100InvoiceNS      = "http://www.pidx.org/schemas/v1.0/invoice"
	pidxV100FieldTicketNS  = "http://www.pidx.org/schemas/v1.0/fieldticket"
	pidxXSINamespace       = "http://www.w3.org/2001/XMLSchema-instance"
)

type pidxV100Adapter struct{}

// NewPIDXv100Adapter creates the version adapter for PIDX 1.00.
func NewPIDXv100Adapter() VersionAdapter {
	return pidxV100Adapter{}
}

func (pidxV100Adapter) Version() string { return pidxV100 }

func (a pidxV100Adapter) Namespaces(messageType delivery.MessageType) (Namespaces, error) {
	switch messageType {
	case delivery.MessageTypeFieldTicketRequest:
		return Namespaces{
			XMLNS:          pidxV100FieldTicketNS,
			XSI:            pidxXSINamespace,
			SchemaLocation: pidxV100FieldTicketNS + " FieldTicket.xsd",
		}, nil
	case delivery.MessageTypeInvoiceRequest, delivery.MessageTypeSalesOrder:
		return Namespaces{
			XMLNS:          pidxV100InvoiceNS,
			XSI:            pidxXSINamespace,
			SchemaLocation: pidxV100InvoiceNS + " Invoice.xsd",
		}, nil
	default:
		return Namespaces{}, delivery.NewEncodingError(fmt.Sprintf("no PIDX 1.00 namespaces for message type %q", messageType))
	}
}

type pidxV100Invoice struct {
	XMLName        xml.Name `xml:"Invoice"`
	XMLNS          string   `xml:"xmlns,attr"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	Version        string   `xml:"version,attr"`

	InvoiceProperties pidxV100InvoiceProperties `xml:"InvoiceProperties"`
	LineItems         []pidxV100LineItem        `xml:"InvoiceDetails>LineItem"`
}

type pidxV100InvoiceProperties struct {
	InvoiceNumber string `xml:"InvoiceNumber"`
	InvoiceDate   string `xml:"InvoiceDate,omitempty"`
	CurrencyCode  string `xml:"CurrencyCode,omitempty"`
	TotalAmount   string `xml:"TotalAmount,omitempty"`
}

type pidxV100FieldTicket struct {
	XMLName        xml.Name `xml:"FieldTicket"`
	XMLNS          string   `xml:"xmlns,attr"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	Version        string   `xml:"version,attr"`

	FieldTicketProperties pidxV100FieldTicketProperties `xml:"FieldTicketProperties"`
	LineItems             []pidxV100LineItem            `xml:"FieldTicketDetails>LineItem"`
}

type pidxV100FieldTicketProperties struct {
	TicketNumber   string `xml:"TicketNumber"`
	TicketDate     string `xml:"TicketDate,omitempty"`
	WellIdentifier string `xml:"WellIdentifier,omitempty"`
}

type pidxV100LineItem struct {
	LineNumber  int    `xml:"LineNumber"`
	Description string `xml:"Description,omitempty"`
	Quantity    string `xml:"Quantity,omitempty"`
	UnitPrice   string `xml:"UnitPrice,omitempty"`
	Total       string `xml:"Total,omitempty"`
}

func (a pidxV100Adapter) Document(medium []byte, messageType delivery.MessageType) (any, error) {
	ns, err := a.Namespaces(messageType)
	if err != nil {
		return nil, err
	}

	if messageType == delivery.MessageTypeFieldTicketRequest {
		var m pidxFieldTicketMedium
		if err := json.Unmarshal(medium, &m); err != nil {
			return nil, delivery.WrapEncodingError(err, "medium is not a field-ticket document")
		}

		doc := pidxV100FieldTicket{
			XMLNS:          ns.XMLNS,
			XSI:            ns.XSI,
			SchemaLocation: ns.SchemaLocation,
			Version:        pidxV100,
			FieldTicketProperties: pidxV100FieldTicketProperties{
				TicketNumber:   m.FieldTicketProperties.TicketNumber,
				TicketDate:     m.FieldTicketProperties.TicketDate,
				WellIdentifier: m.FieldTicketProperties.WellIdentifier,
			},
		}
		for _, item := range m.LineItems {
			doc.LineItems = append(doc.LineItems, pidxV100LineItemFrom(item))
		}
		return doc, nil
	}

	var m pidxInvoiceMedium
	if err := json.Unmarshal(medium, &m); err != nil {
		return nil, delivery.WrapEncodingError(err, "medium is not an invoice document")
	}

	doc := pidxV100Invoice{
		XMLNS:          ns.XMLNS,
		XSI:            ns.XSI,
		SchemaLocation: ns.SchemaLocation,
		Version:        pidxV100,
		InvoiceProperties: pidxV100InvoiceProperties{
			InvoiceNumber: m.InvoiceProperties.InvoiceNumber,
			InvoiceDate:   m.InvoiceProperties.InvoiceDate,
			CurrencyCode:  m.InvoiceProperties.CurrencyCode,
			TotalAmount:   m.InvoiceProperties.TotalAmount.String(),
		},
	}
	for _, item := range m.LineItems {
		doc.LineItems = append(doc.LineItems, pidxV100LineItemFrom(item))
	}
	return doc, nil
}

func pidxV100LineItemFrom(item pidxLineItemMedium) pidxV100LineItem {
	return pidxV100LineItem{
		LineNumber:  item.LineNumber,
		Description: item.Description,
		Quantity:    item.Quantity.String(),
		UnitPrice:   item.UnitPrice.String(),
		Total:       item.Total.String(),
	}
}
