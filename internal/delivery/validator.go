package delivery

// validator.go implements the stateless precondition checks run against every
// inbound envelope before the pipeline touches it.

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateRequest runs every precondition check against the inbound envelope
// and returns the collected failures as human-readable messages.
//
// All checks run independently (no short-circuiting) so the caller gets the
// complete list in one pass. An empty slice means the request may proceed.
func ValidateRequest(req *DeliveryRequest) []string {
	var errs []string

	if _, err := ParseMessageType(req.MessageType); err != nil {
		errs = append(errs, fmt.Sprintf("messageType %q is not a known message type", req.MessageType))
	}

	if len(req.Payload) == 0 {
		errs = append(errs, "payload is required")
	}

	if req.Platform() == "" {
		errs = append(errs, "payload is missing the platform identifier")
	}

	if req.BillingCustomerID() == uuid.Nil {
		errs = append(errs, "payload is missing the billing customer id")
	}

	if req.SourceSystemID == "" {
		errs = append(errs, "sourceSystemId is required")
	}

	if req.InvoiceID() == "" {
		errs = append(errs, "payload is missing the invoice or ticket number")
	}

	return errs
}
