package alarm

import (
	"fmt"
	"net/http"
)

// ValidationError means the caller did not supply enough to build a request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string   { return e.Msg }
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// ConfigurationError means the server is missing required configuration,
// such as the API key.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string   { return e.Msg }
func (e *ConfigurationError) HTTPStatus() int { return http.StatusInternalServerError }

// TransportError means the upstream could not be reached or read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string   { return e.Err.Error() }
func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) HTTPStatus() int { return http.StatusInternalServerError }

// StatusError means the upstream answered with a non-2xx status. Body is the
// decoded JSON (nil if it did not parse) or the raw text.
type StatusError struct {
	Status int
	Body   any
	Target string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned %d", e.Target, e.Status)
}

func (e *StatusError) HTTPStatus() int { return http.StatusBadGateway }
