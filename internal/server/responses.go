package server

// responses.go maps pipeline errors onto HTTP responses for the ingress API.

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
	"github.com/haulage-networks/exchange-delivery/internal/logger"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	StatusCode int `json:"statusCode"`

	// ErrorCode is the pipeline taxonomy code (VAL, CFG, ENC, TRN, ATT, INT).
	ErrorCode string `json:"errorCode"`

	Message string `json:"message"`

	// Retryable tells the caller whether redelivering the same message can succeed.
	Retryable bool `json:"retryable"`

	// RequestReference is the ingress request id for support correlation.
	RequestReference string `json:"requestReference,omitempty"`

	ErrorDateTime string `json:"errorDateTime"`
}

// statusForCode maps the pipeline error taxonomy to HTTP status codes.
func statusForCode(code delivery.ErrorCode) int {
	switch code {
	case delivery.ErrCodeValidation:
		return http.StatusBadRequest
	case delivery.ErrCodeConfiguration, delivery.ErrCodeEncoding, delivery.ErrCodeAttachment:
		return http.StatusUnprocessableEntity
	case delivery.ErrCodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError logs the failure and sends the mapped error response.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := delivery.CodeOf(err)
	statusCode := statusForCode(code)

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Warn("request failed",
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
		slog.String("error_code", string(code)),
	)

	respondWithJSON(w, statusCode, &ErrorResponse{
		StatusCode:       statusCode,
		ErrorCode:        string(code),
		Message:          err.Error(),
		Retryable:        delivery.IsRetryable(err),
		RequestReference: middleware.GetReqID(r.Context()),
		ErrorDateTime:    time.Now().UTC().Format(time.RFC3339),
	})
}

// respondWithJSON sends a JSON response with the given status code
func respondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// headers are already written; log and move on
			slog.Error("failed to encode JSON response",
				slog.String("error", err.Error()),
			)
		}
	}
}
