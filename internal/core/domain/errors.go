// Package domain contains the core business entities for the ticket payment flow.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - one per failure class of the payment flow.
var (
	// ErrValidation is returned when required request fields are missing.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned when a required server secret is absent.
	ErrConfiguration = errors.New("server configuration incomplete")

	// ErrUpstream is returned when the payment gateway rejects or fails a call.
	ErrUpstream = errors.New("payment gateway error")

	// ErrInvalidSignature is returned when the callback signature does not match.
	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrNotification is returned when a ticket notification could not be delivered.
	// It is only ever logged.
	ErrNotification = errors.New("ticket notification failed")
)

// Error codes carried by ServiceError.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeConfiguration    = "CONFIGURATION_ERROR"
	CodeUpstream         = "UPSTREAM_ERROR"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeNotification     = "NOTIFICATION_ERROR"
)

// ServiceError wraps errors with additional context.
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(err error, message, code string) *ServiceError {
	return &ServiceError{Err: err, Message: message, Code: code}
}

// UpstreamError reports a non-success response from the payment gateway.
// Body is the gateway response body, unmodified.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("failed to create order: %d %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
