package core

import (
	"fmt"
	"net/http"
)

// ValidationError reports a missing required field on an inbound record
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required field: %s", e.Field)
}

// GatewayError is returned when the remote store answers with an error
// status or the call itself fails. Transport failures use status 500.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("store API error: %d - %s", e.Status, e.Message)
}

// NewTransportError wraps a failure that happened before a status was received
func NewTransportError(err error) *GatewayError {
	return &GatewayError{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("request failed: %v", err),
	}
}

// FilesystemError is returned when export cannot create a directory or write the file
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
