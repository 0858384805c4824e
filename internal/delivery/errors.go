package delivery

// errors.go defines the error taxonomy used across the delivery pipeline.

import (
	"errors"
	"fmt"
)

// Error represents a structured error from the delivery pipeline.
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	// ErrCodeValidation indicates the inbound envelope failed precondition checks.
	// The request will never succeed without payload correction, so the message
	// should be acknowledged rather than redelivered.
	ErrCodeValidation ErrorCode = "VAL"

	// ErrCodeConfiguration indicates a missing exchange config or an
	// unregistered encoder, adapter version, or transport channel.
	// Fatal for the request; retrying cannot help until configuration changes.
	ErrCodeConfiguration ErrorCode = "CFG"

	// ErrCodeEncoding indicates a malformed medium (unexpected structure in
	// rows or fields). Fatal for the request.
	ErrCodeEncoding ErrorCode = "ENC"

	// ErrCodeTransport indicates a network, auth, or remote-rejection failure
	// during the send. Retryable at the message-delivery layer.
	ErrCodeTransport ErrorCode = "TRN"

	// ErrCodeAttachment indicates a per-attachment fetch or size failure.
	// Attachment failures degrade gracefully (the attachment is skipped); this
	// code only surfaces when attachment handling fails in a way that cannot
	// be skipped.
	ErrCodeAttachment ErrorCode = "ATT"

	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INT"
)

// PipelineError represents a structured error from the delivery pipeline.
type PipelineError struct {
	// code classifies the failure per the pipeline error taxonomy
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *PipelineError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *PipelineError) Code() ErrorCode { return e.code }
func (e *PipelineError) Unwrap() error   { return e.wrapped }

// Retryable reports whether redelivering the inbound message could succeed.
// Only transport failures are retryable; everything else is deterministic.
func (e *PipelineError) Retryable() bool {
	return e.code == ErrCodeTransport
}

// CodeOf extracts the pipeline error code from err, or ErrCodeInternal when
// err does not carry one.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code()
	}
	return ErrCodeInternal
}

// IsRetryable reports whether err is a retryable pipeline error.
func IsRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}

// NewValidationError creates a validation error from the collected check failures.
func NewValidationError(msg string) error {
	return &PipelineError{code: ErrCodeValidation, message: msg}
}

// NewConfigurationError creates a configuration error.
// Use this when no exchange config matches the request, or when no encoder,
// adapter version, or transport channel is registered for a configured type.
func NewConfigurationError(msg string) error {
	return &PipelineError{code: ErrCodeConfiguration, message: msg}
}

// WrapConfigurationError wraps an existing error as a configuration error.
func WrapConfigurationError(err error, msg string) error {
	return &PipelineError{code: ErrCodeConfiguration, message: msg, wrapped: err}
}

// NewEncodingError creates an encoding error for a malformed medium.
func NewEncodingError(msg string) error {
	return &PipelineError{code: ErrCodeEncoding, message: msg}
}

// WrapEncodingError wraps an existing error as an encoding error.
func WrapEncodingError(err error, msg string) error {
	return &PipelineError{code: ErrCodeEncoding, message: msg, wrapped: err}
}

// NewTransportError creates a transport error.
func NewTransportError(msg string) error {
	return &PipelineError{code: ErrCodeTransport, message: msg}
}

// WrapTransportError wraps an existing error as a transport error.
func WrapTransportError(err error, msg string) error {
	return &PipelineError{code: ErrCodeTransport, message: msg, wrapped: err}
}

// NewAttachmentError creates an attachment error.
func NewAttachmentError(msg string) error {
	return &PipelineError{code: ErrCodeAttachment, message: msg}
}

// WrapAttachmentError wraps an existing error as an attachment error.
func WrapAttachmentError(err error, msg string) error {
	return &PipelineError{code: ErrCodeAttachment, message: msg, wrapped: err}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &PipelineError{code: ErrCodeInternal, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &PipelineError{code: ErrCodeInternal, message: msg, wrapped: err}
}
