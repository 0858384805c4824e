package encoder

// pidx_medium.go defines the JSON shapes the PIDX version adapters read the
// medium through. Both versions consume the same working JSON; the versions
// differ only in the document they produce from it.

import "encoding/json"

type pidxLineItemMedium struct {
	LineNumber  int         `json:"LineNumber"`
	Description string      `json:"Description"`
	Quantity    json.Number `json:"Quantity"`
	UnitOfMeasure string    `json:"UnitOfMeasure"`
	UnitPrice   json.Number `json:"UnitPrice"`
	Total       json.Number `json:"Total"`
}

type pidxInvoiceMedium struct {
	InvoiceProperties struct {
		InvoiceNumber string `json:"InvoiceNumber"`
		InvoiceDate   string `json:"InvoiceDate"`
		CurrencyCode  string `json:"CurrencyCode"`
		TotalAmount   json.Number `json:"TotalAmount"`
	} `json:"InvoiceProperties"`

	PartnerInformation []struct {
		Role string `json:"Role"`
		Name string `json:"Name"`
		ID   string `json:"Id"`
	} `json:"PartnerInformation"`

	LineItems []pidxLineItemMedium `json:"LineItems"`
}

type pidxFieldTicketMedium struct {
	FieldTicketProperties struct {
		TicketNumber   string `json:"TicketNumber"`
		TicketDate     string `json:"TicketDate"`
		WellIdentifier string `json:"WellIdentifier"`
		JobLocation    string `json:"JobLocation"`
	} `json:"FieldTicketProperties"`

	LineItems []pidxLineItemMedium `json:"LineItems"`
}
