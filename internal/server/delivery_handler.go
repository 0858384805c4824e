package server

// delivery_handler.go accepts inbound delivery requests.

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// handleDelivery runs one delivery request through the pipeline and returns
// the response envelope.
//
// The raw message is persisted verbatim before processing; on failure the
// response carries the pipeline error code and whether redelivery can help.
func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	rawMessage, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, r, delivery.WrapInternalError(err, "failed to read request body"))
		return
	}

	var req delivery.DeliveryRequest
	if err := json.Unmarshal(rawMessage, &req); err != nil {
		respondWithError(w, r, delivery.WrapEncodingError(err, "request body is not a delivery request"))
		return
	}

	resp, err := s.orchestrator.Process(r.Context(), rawMessage, &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
